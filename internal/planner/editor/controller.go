package editor

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"floorplanner/internal/geometry"
	"floorplanner/internal/planner/models"

	"github.com/google/uuid"
)

// ============================================================
// Interaction State
// ============================================================

type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type session struct {
	roomID string
	handle Handle
	start  Point
	anchor geometry.Rect
}

// ============================================================
// Controller
// ============================================================

// Controller owns the rooms of one canvas and drives drag/resize sessions.
// It is not safe for concurrent use; Registry serialises access per canvas.
type Controller struct {
	bounds   geometry.Bounds
	rooms    []*models.Room // placement order
	state    State
	sess     *session
	locked   bool
	selected string
	counter  int

	random func() float64
	newID  func() string
}

type Option func(*Controller)

// WithRandom overrides the source used to scatter new rooms.
func WithRandom(fn func() float64) Option {
	return func(c *Controller) { c.random = fn }
}

// WithIDGenerator overrides room id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func NewController(bounds geometry.Bounds, opts ...Option) *Controller {
	c := &Controller{
		bounds: bounds,
		random: rand.Float64,
		newID:  newRoomID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newRoomID() string {
	return "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (c *Controller) Bounds() geometry.Bounds { return c.bounds }
func (c *Controller) State() State            { return c.state }
func (c *Controller) Locked() bool            { return c.locked }
func (c *Controller) Selected() string        { return c.selected }

// ActiveRoom returns the id of the room under the current session, if any.
func (c *Controller) ActiveRoom() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.roomID
}

// Rooms returns copies of all rooms in placement order.
func (c *Controller) Rooms() []models.Room {
	out := make([]models.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, *r)
	}
	return out
}

func (c *Controller) Room(id string) (models.Room, bool) {
	if r := c.find(id); r != nil {
		return *r, true
	}
	return models.Room{}, false
}

func (c *Controller) find(id string) *models.Room {
	for _, r := range c.rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (c *Controller) othersThan(id string) []geometry.Rect {
	others := make([]geometry.Rect, 0, len(c.rooms))
	for _, r := range c.rooms {
		if r.ID != id {
			others = append(others, r.Rect)
		}
	}
	return others
}

// ============================================================
// Rooms
// ============================================================

// AddRoomInstance places a new room from t near the top-left corner of the
// canvas, then pushes it inside the bounds and out of existing rooms. When
// that still leaves it overlapping, the first free grid spot is used; with
// none left the room is not added and ErrNoSpace is returned.
func (c *Controller) AddRoomInstance(t models.Template) (models.Room, error) {
	t.Type = strings.TrimSpace(t.Type)
	if t.Type == "" {
		return models.Room{}, ErrBadTemplate
	}
	w, h := geometry.NormalizeSize(t.Width, t.Height)

	rect := geometry.Rect{
		X: geometry.SnapToGrid(20 + c.random()*160),
		Y: geometry.SnapToGrid(20 + c.random()*120),
		W: w,
		H: h,
	}
	others := c.othersThan("")
	rect = geometry.ResolveCollision(geometry.ResolveCanvasBounds(rect, c.bounds), others)
	if !c.acceptable(rect, others) {
		spot, ok := geometry.FreeSpot(rect, others, c.bounds)
		if !ok {
			return models.Room{}, ErrNoSpace
		}
		rect = spot
	}

	c.counter++
	room := &models.Room{
		ID:   c.uniqueID(),
		Name: fmt.Sprintf("%s%d", t.Type, c.counter),
		Type: t.Type,
		Rect: rect,
	}
	c.rooms = append(c.rooms, room)
	return *room, nil
}

func (c *Controller) uniqueID() string {
	id := c.newID()
	for c.find(id) != nil {
		id = c.newID()
	}
	return id
}

// Select marks a room for deletion by key. An empty id clears the selection.
func (c *Controller) Select(id string) error {
	if id == "" {
		c.selected = ""
		return nil
	}
	if c.find(id) == nil {
		return ErrRoomNotFound
	}
	c.selected = id
	return nil
}

// DeleteSelected removes the selected room. It is the delete-key path and
// honours the lock. Nothing selected, or an already removed room, is a no-op.
func (c *Controller) DeleteSelected() (string, error) {
	if c.locked {
		return "", ErrLocked
	}
	id := c.selected
	if id == "" {
		return "", nil
	}
	removed, err := c.DeleteRoom(id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "", nil
	}
	return id, nil
}

// DeleteRoom removes a room by id regardless of the lock. Deleting a missing
// room reports false without an error.
func (c *Controller) DeleteRoom(id string) (bool, error) {
	if c.sess != nil && c.sess.roomID == id {
		return false, ErrRoomActive
	}
	for i, r := range c.rooms {
		if r.ID != id {
			continue
		}
		c.rooms = append(c.rooms[:i], c.rooms[i+1:]...)
		if c.selected == id {
			c.selected = ""
		}
		return true, nil
	}
	return false, nil
}

// AttachMetadata stores an opaque reference to uploaded room data.
func (c *Controller) AttachMetadata(id, ref string) error {
	r := c.find(id)
	if r == nil {
		return ErrRoomNotFound
	}
	r.MetadataRef = ref
	return nil
}

// ============================================================
// Lock
// ============================================================

func (c *Controller) SetLocked(locked bool) { c.locked = locked }

func (c *Controller) ToggleLock() bool {
	c.locked = !c.locked
	return c.locked
}

// ============================================================
// Pointer Events
// ============================================================

// PointerDown starts a drag session on the room body, or a resize session
// when h names a corner handle.
func (c *Controller) PointerDown(roomID string, h Handle, p Point) error {
	if c.locked {
		return ErrLocked
	}
	if c.state != Idle {
		return ErrBusy
	}
	r := c.find(roomID)
	if r == nil {
		return ErrRoomNotFound
	}
	if _, err := ParseHandle(string(h)); err != nil {
		return err
	}

	c.sess = &session{
		roomID: roomID,
		handle: h,
		start:  Point{X: geometry.Sanitize(p.X), Y: geometry.Sanitize(p.Y)},
		anchor: r.Rect,
	}
	if h == HandleNone {
		c.state = Dragging
	} else {
		c.state = Resizing
	}
	return nil
}

// PointerMove recomputes the active room from the pointer delta and commits
// the result when it keeps the canvas valid. While locked the move is
// ignored and the current room is returned unchanged.
func (c *Controller) PointerMove(p Point) (models.Room, error) {
	if c.sess == nil {
		return models.Room{}, ErrNoSession
	}
	r := c.find(c.sess.roomID)
	if r == nil {
		return models.Room{}, ErrRoomNotFound
	}
	if c.locked {
		return *r, nil
	}

	dx := geometry.Sanitize(p.X) - c.sess.start.X
	dy := geometry.Sanitize(p.Y) - c.sess.start.Y
	others := c.othersThan(r.ID)

	var next geometry.Rect
	switch c.state {
	case Dragging:
		next = DragTo(c.sess.anchor, dx, dy, others, c.bounds)
	case Resizing:
		next = ResizeTo(c.sess.anchor, c.sess.handle, dx, dy, others, c.bounds)
	}

	if c.acceptable(next, others) {
		r.Rect = next
	}
	return *r, nil
}

func (c *Controller) acceptable(r geometry.Rect, others []geometry.Rect) bool {
	return c.bounds.Contains(r) &&
		geometry.IsGridAligned(r) &&
		r.W >= geometry.MinWidth &&
		r.H >= geometry.MinHeight &&
		!geometry.CollidesAny(r, others)
}

// PointerUp ends the current session and returns the room as committed.
func (c *Controller) PointerUp() (models.Room, error) {
	if c.sess == nil {
		return models.Room{}, ErrNoSession
	}
	id := c.sess.roomID
	c.sess = nil
	c.state = Idle

	room, _ := c.Room(id)
	return room, nil
}

// PointerLeave behaves like PointerUp but never fails.
func (c *Controller) PointerLeave() {
	c.sess = nil
	c.state = Idle
}

// ============================================================
// Save & Load
// ============================================================

func (c *Controller) SaveLayout() []models.LayoutItem {
	items := make([]models.LayoutItem, 0, len(c.rooms))
	for _, r := range c.rooms {
		items = append(items, r.Item())
	}
	return items
}

// LoadLayout replaces every room with items. Positions are snapped to the
// grid and sizes normalised. Loading is refused while a session is active.
func (c *Controller) LoadLayout(items []models.LayoutItem) error {
	if c.state != Idle {
		return ErrSessionActive
	}

	rooms := make([]*models.Room, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		id := strings.TrimSpace(it.ID)
		for id == "" || seen[id] {
			id = c.newID()
		}
		seen[id] = true

		typ := strings.TrimSpace(it.Type)
		if typ == "" {
			typ = "room"
		}
		w, h := geometry.NormalizeSize(it.Width, it.Height)
		rooms = append(rooms, &models.Room{
			ID:   id,
			Name: fmt.Sprintf("%s%d", typ, i+1),
			Type: typ,
			Rect: geometry.Rect{
				X: geometry.SnapToGrid(float64(it.X)),
				Y: geometry.SnapToGrid(float64(it.Y)),
				W: w,
				H: h,
			},
			MetadataRef: it.AttachedJSON,
		})
	}

	c.rooms = rooms
	c.counter = len(rooms)
	c.selected = ""
	return nil
}
