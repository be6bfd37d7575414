package editor

import (
	"sort"
	"sync"

	"floorplanner/internal/geometry"

	"github.com/google/uuid"
)

// ============================================================
// Canvas Registry
// ============================================================

type canvasEntry struct {
	mu   sync.Mutex
	ctrl *Controller
}

// Registry keeps one Controller per open canvas. Calls for the same canvas
// are serialised; different canvases proceed independently.
type Registry struct {
	mu       sync.Mutex
	canvases map[string]*canvasEntry
	opts     []Option
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		canvases: make(map[string]*canvasEntry),
		opts:     opts,
	}
}

func (r *Registry) Create(bounds geometry.Bounds) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.canvases[id] = &canvasEntry{ctrl: NewController(bounds, r.opts...)}
	return id
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.canvases[id]; !ok {
		return false
	}
	delete(r.canvases, id)
	return true
}

func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.canvases))
	for id := range r.canvases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With runs fn with exclusive access to the canvas controller.
func (r *Registry) With(id string, fn func(*Controller) error) error {
	r.mu.Lock()
	entry, ok := r.canvases[id]
	r.mu.Unlock()
	if !ok {
		return ErrCanvasNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.ctrl)
}
