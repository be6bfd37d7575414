package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"floorplanner/internal/geometry"
	"floorplanner/internal/planner/catalog"
	"floorplanner/internal/planner/editor"
	"floorplanner/internal/planner/events"
	"floorplanner/internal/planner/models"
	"floorplanner/internal/planner/repository"
	"floorplanner/internal/planner/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Planner Handler
// ============================================================

type PlannerHandler struct {
	canvases *editor.Registry
	repo     *repository.Repository
	catalog  *catalog.Client
	storage  *service.FileStorage
	renderer *service.RendererClient
	events   events.Publisher
	bounds   geometry.Bounds
	logger   *zap.Logger
}

func NewPlannerHandler(
	canvases *editor.Registry,
	repo *repository.Repository,
	templates *catalog.Client,
	storage *service.FileStorage,
	renderer *service.RendererClient,
	defaultBounds geometry.Bounds,
	logger *zap.Logger,
) *PlannerHandler {
	return &PlannerHandler{
		canvases: canvases,
		repo:     repo,
		catalog:  templates,
		storage:  storage,
		renderer: renderer,
		events:   events.Nop{},
		bounds:   defaultBounds,
		logger:   logger,
	}
}

// WithEvents публикует события о сохранении, загрузке и импорте макетов.
func (h *PlannerHandler) WithEvents(p events.Publisher) *PlannerHandler {
	h.events = p
	return h
}

// Register вешает маршруты планировщика на router.
func (h *PlannerHandler) Register(r fiber.Router) {
	r.Get("/templates", h.Templates)

	r.Post("/canvases", h.CreateCanvas)
	r.Get("/canvases/:id", h.GetCanvas)
	r.Delete("/canvases/:id", h.DeleteCanvas)

	r.Post("/canvases/:id/rooms", h.AddRoom)
	r.Delete("/canvases/:id/rooms/:roomId", h.DeleteRoom)
	r.Post("/canvases/:id/select", h.Select)
	r.Post("/canvases/:id/delete-selected", h.DeleteSelected)
	r.Post("/canvases/:id/lock", h.Lock)

	r.Post("/canvases/:id/pointer/down", h.PointerDown)
	r.Post("/canvases/:id/pointer/move", h.PointerMove)
	r.Post("/canvases/:id/pointer/up", h.PointerUp)
	r.Post("/canvases/:id/pointer/leave", h.PointerLeave)

	r.Post("/canvases/:id/rooms/:roomId/metadata", h.UploadMetadata)
	r.Get("/canvases/:id/rooms/:roomId/metadata", h.GetMetadata)

	r.Post("/canvases/:id/layout/save", h.SaveLayout)
	r.Post("/canvases/:id/layout/load", h.LoadLayout)
	r.Get("/layouts", h.ListLayouts)
	r.Get("/layouts/:id", h.GetLayout)
	r.Delete("/layouts/:id", h.DeleteLayout)

	r.Get("/canvases/:id/export/:format", h.Export)
	r.Post("/canvases/:id/import/:format", h.Import)
}

type canvasView struct {
	ID         string        `json:"id"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	State      string        `json:"state"`
	Locked     bool          `json:"locked"`
	Selected   string        `json:"selected"`
	ActiveRoom string        `json:"active_room"`
	Rooms      []models.Room `json:"rooms"`
}

func viewOf(id string, ctrl *editor.Controller) canvasView {
	b := ctrl.Bounds()
	return canvasView{
		ID:         id,
		Width:      b.Width,
		Height:     b.Height,
		State:      ctrl.State().String(),
		Locked:     ctrl.Locked(),
		Selected:   ctrl.Selected(),
		ActiveRoom: ctrl.ActiveRoom(),
		Rooms:      ctrl.Rooms(),
	}
}

// ============================================================
// Templates
// ============================================================

// Templates возвращает каталог комнат (удаленный или встроенный).
func (h *PlannerHandler) Templates(c fiber.Ctx) error {
	templates, remote := h.catalog.Templates(c.Context())
	source := "remote"
	if !remote {
		source = "fallback"
	}
	return c.JSON(fiber.Map{"rooms": templates, "source": source})
}

// ============================================================
// Canvases
// ============================================================

type createCanvasRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (h *PlannerHandler) CreateCanvas(c fiber.Ctx) error {
	req := createCanvasRequest{Width: h.bounds.Width, Height: h.bounds.Height}
	if err := decodeOptional(c, &req); err != nil {
		return err
	}
	if req.Width <= 0 || req.Height <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "width and height must be positive"})
	}

	id := h.canvases.Create(geometry.Bounds{Width: req.Width, Height: req.Height})
	h.logger.Info("Canvas created", zap.String("canvas_id", id), zap.Int("width", req.Width), zap.Int("height", req.Height))

	var view canvasView
	_ = h.canvases.With(id, func(ctrl *editor.Controller) error {
		view = viewOf(id, ctrl)
		return nil
	})
	return c.Status(http.StatusCreated).JSON(view)
}

func (h *PlannerHandler) GetCanvas(c fiber.Ctx) error {
	id := c.Params("id")
	var view canvasView
	err := h.canvases.With(id, func(ctrl *editor.Controller) error {
		view = viewOf(id, ctrl)
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *PlannerHandler) DeleteCanvas(c fiber.Ctx) error {
	id := c.Params("id")
	var refs []string
	err := h.canvases.With(id, func(ctrl *editor.Controller) error {
		refs = metadataRefs(ctrl.Rooms())
		return nil
	})
	if err != nil || !h.canvases.Delete(id) {
		return h.fail(c, editor.ErrCanvasNotFound)
	}
	h.pruneMetadata(c, refs)
	return c.SendStatus(http.StatusNoContent)
}

// pruneMetadata удаляет файлы, на которые больше не ссылаются ни открытые
// холсты, ни сохранённые макеты.
func (h *PlannerHandler) pruneMetadata(c fiber.Ctx, refs []string) {
	if len(refs) == 0 {
		return
	}
	live := map[string]bool{}
	for _, id := range h.canvases.IDs() {
		_ = h.canvases.With(id, func(ctrl *editor.Controller) error {
			for _, ref := range metadataRefs(ctrl.Rooms()) {
				live[ref] = true
			}
			return nil
		})
	}

	for _, ref := range refs {
		if live[ref] {
			continue
		}
		saved, err := h.repo.MetadataReferenced(c.Context(), ref)
		if err != nil {
			h.logger.Warn("Metadata reference check failed", zap.String("ref", ref), zap.Error(err))
			continue
		}
		if saved {
			continue
		}
		if err := h.storage.RemoveMetadata(ref); err != nil {
			h.logger.Warn("Failed to remove metadata", zap.String("ref", ref), zap.Error(err))
		}
	}
}

func metadataRefs(rooms []models.Room) []string {
	var refs []string
	for _, r := range rooms {
		if r.MetadataRef != "" {
			refs = append(refs, r.MetadataRef)
		}
	}
	return refs
}

// ============================================================
// Rooms
// ============================================================

type addRoomRequest struct {
	Template string `json:"template"`
	Type     string `json:"type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	SVG      string `json:"svg"`
}

// AddRoom создает экземпляр комнаты по шаблону.
func (h *PlannerHandler) AddRoom(c fiber.Ctx) error {
	var req addRoomRequest
	if err := decodeRequired(c, &req); err != nil {
		return err
	}

	tpl := models.Template{Type: req.Type, Width: req.Width, Height: req.Height, SVG: req.SVG}
	if req.Template != "" {
		templates, _ := h.catalog.Templates(c.Context())
		found, ok := catalog.Lookup(templates, req.Template)
		if !ok {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown template"})
		}
		tpl = found
	}

	var room models.Room
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		var err error
		room, err = ctrl.AddRoomInstance(tpl)
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(room)
}

// DeleteRoom удаляет комнату кнопкой удаления; повторный вызов ничего не делает.
func (h *PlannerHandler) DeleteRoom(c fiber.Ctx) error {
	var removed bool
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		var err error
		removed, err = ctrl.DeleteRoom(c.Params("roomId"))
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": removed})
}

type selectRequest struct {
	RoomID string `json:"room_id"`
}

func (h *PlannerHandler) Select(c fiber.Ctx) error {
	var req selectRequest
	if err := decodeOptional(c, &req); err != nil {
		return err
	}
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		return ctrl.Select(req.RoomID)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"selected": req.RoomID})
}

// DeleteSelected соответствует клавише Delete.
func (h *PlannerHandler) DeleteSelected(c fiber.Ctx) error {
	var removed string
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		var err error
		removed, err = ctrl.DeleteSelected()
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": removed})
}

type lockRequest struct {
	Locked *bool `json:"locked"`
}

// Lock выставляет блокировку или переключает ее, если locked не передан.
func (h *PlannerHandler) Lock(c fiber.Ctx) error {
	var req lockRequest
	if err := decodeOptional(c, &req); err != nil {
		return err
	}
	var locked bool
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		if req.Locked == nil {
			locked = ctrl.ToggleLock()
			return nil
		}
		ctrl.SetLocked(*req.Locked)
		locked = *req.Locked
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"locked": locked})
}

// ============================================================
// Pointer Events
// ============================================================

type pointerRequest struct {
	RoomID string  `json:"room_id"`
	Handle string  `json:"handle"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (h *PlannerHandler) PointerDown(c fiber.Ctx) error {
	var req pointerRequest
	if err := decodeRequired(c, &req); err != nil {
		return err
	}
	handle, err := editor.ParseHandle(req.Handle)
	if err != nil {
		return h.fail(c, err)
	}

	var view canvasView
	id := c.Params("id")
	err = h.canvases.With(id, func(ctrl *editor.Controller) error {
		if err := ctrl.PointerDown(req.RoomID, handle, editor.Point{X: req.X, Y: req.Y}); err != nil {
			return err
		}
		view = viewOf(id, ctrl)
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *PlannerHandler) PointerMove(c fiber.Ctx) error {
	var req pointerRequest
	if err := decodeRequired(c, &req); err != nil {
		return err
	}
	var room models.Room
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		var err error
		room, err = ctrl.PointerMove(editor.Point{X: req.X, Y: req.Y})
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(room)
}

func (h *PlannerHandler) PointerUp(c fiber.Ctx) error {
	var room models.Room
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		var err error
		room, err = ctrl.PointerUp()
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(room)
}

func (h *PlannerHandler) PointerLeave(c fiber.Ctx) error {
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		ctrl.PointerLeave()
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Room Metadata
// ============================================================

// UploadMetadata сохраняет json, прикрепленный к комнате.
func (h *PlannerHandler) UploadMetadata(c fiber.Ctx) error {
	canvasID, roomID := c.Params("id"), c.Params("roomId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".json" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "only json allowed"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	var ref string
	err = h.canvases.With(canvasID, func(ctrl *editor.Controller) error {
		if _, ok := ctrl.Room(roomID); !ok {
			return editor.ErrRoomNotFound
		}
		saved, err := h.storage.SaveMetadata(roomID, data)
		if err != nil {
			return err
		}
		ref = saved
		return ctrl.AttachMetadata(roomID, ref)
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("Room metadata stored", zap.String("canvas_id", canvasID), zap.String("room_id", roomID), zap.Int("bytes", len(data)))
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"room_id":       roomID,
		"attached_json": ref,
	})
}

func (h *PlannerHandler) GetMetadata(c fiber.Ctx) error {
	var ref string
	err := h.canvases.With(c.Params("id"), func(ctrl *editor.Controller) error {
		room, ok := ctrl.Room(c.Params("roomId"))
		if !ok {
			return editor.ErrRoomNotFound
		}
		ref = room.MetadataRef
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}

	data, err := h.storage.ReadMetadata(ref)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(data)
}

// ============================================================
// Layouts
// ============================================================

type saveLayoutRequest struct {
	LayoutID string `json:"layout_id"`
	Name     string `json:"name"`
}

// SaveLayout сохраняет текущие комнаты холста в базу.
func (h *PlannerHandler) SaveLayout(c fiber.Ctx) error {
	var req saveLayoutRequest
	if err := decodeOptional(c, &req); err != nil {
		return err
	}

	layout, err := h.snapshot(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	layout.ID = req.LayoutID
	layout.Name = req.Name

	saved, err := h.repo.Save(c.Context(), layout)
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info("Layout saved", zap.String("layout_id", saved.ID), zap.Int("rooms", len(saved.Rooms)))
	h.publish(c, events.Event{Kind: events.LayoutSaved, CanvasID: c.Params("id"), LayoutID: saved.ID, Rooms: len(saved.Rooms)})
	return c.JSON(fiber.Map{"status": "ok", "layout": saved})
}

type loadLayoutRequest struct {
	LayoutID string `json:"layout_id"`
}

// LoadLayout заменяет комнаты холста сохраненным макетом (последним, если id пуст).
func (h *PlannerHandler) LoadLayout(c fiber.Ctx) error {
	var req loadLayoutRequest
	if err := decodeOptional(c, &req); err != nil {
		return err
	}

	var (
		layout models.Layout
		err    error
	)
	if req.LayoutID == "" {
		layout, err = h.repo.Latest(c.Context())
	} else {
		layout, err = h.repo.Get(c.Context(), req.LayoutID)
	}
	if err != nil {
		return h.fail(c, err)
	}

	return h.replaceRooms(c, layout.Rooms, events.Event{Kind: events.LayoutLoaded, LayoutID: layout.ID}, fiber.Map{"layout_id": layout.ID})
}

func (h *PlannerHandler) ListLayouts(c fiber.Ctx) error {
	list, err := h.repo.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"layouts": list})
}

func (h *PlannerHandler) GetLayout(c fiber.Ctx) error {
	layout, err := h.repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(layout)
}

func (h *PlannerHandler) DeleteLayout(c fiber.Ctx) error {
	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	h.publish(c, events.Event{Kind: events.LayoutDeleted, LayoutID: c.Params("id")})
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Export & Import
// ============================================================

// Export рендерит холст через renderer (svg, pdf, dxf, xlsx, labels).
func (h *PlannerHandler) Export(c fiber.Ctx) error {
	format := strings.ToLower(c.Params("format"))
	if _, ok := service.Formats[format]; !ok {
		return h.fail(c, service.ErrUnsupportedFormat)
	}

	layout, err := h.snapshot(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	data, contentType, err := h.renderer.Export(c.Context(), format, layout)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", `attachment; filename="`+service.FileName(format)+`"`)
	return c.Send(data)
}

// Import распознает комнаты в svg или dxf и заменяет ими холст.
func (h *PlannerHandler) Import(c fiber.Ctx) error {
	format := strings.ToLower(c.Params("format"))
	if !service.ImportFormats[format] {
		return h.fail(c, service.ErrUnsupportedFormat)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != "."+format {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "only " + format + " allowed"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	items, err := h.renderer.Import(c.Context(), format, fileHeader.Filename, data)
	if err != nil {
		return h.fail(c, err)
	}
	return h.replaceRooms(c, items, events.Event{Kind: events.CanvasImported}, fiber.Map{"source": fileHeader.Filename})
}

// ============================================================
// Helpers
// ============================================================

func (h *PlannerHandler) snapshot(canvasID string) (models.Layout, error) {
	var layout models.Layout
	err := h.canvases.With(canvasID, func(ctrl *editor.Controller) error {
		b := ctrl.Bounds()
		layout = models.Layout{
			CanvasWidth:  b.Width,
			CanvasHeight: b.Height,
			Rooms:        ctrl.SaveLayout(),
		}
		return nil
	})
	return layout, err
}

func (h *PlannerHandler) replaceRooms(c fiber.Ctx, items []models.LayoutItem, ev events.Event, extra fiber.Map) error {
	id := c.Params("id")
	var view canvasView
	err := h.canvases.With(id, func(ctrl *editor.Controller) error {
		if err := ctrl.LoadLayout(items); err != nil {
			return err
		}
		view = viewOf(id, ctrl)
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}

	ev.CanvasID = id
	ev.Rooms = len(view.Rooms)
	h.publish(c, ev)

	resp := fiber.Map{"layout": itemsOf(view.Rooms), "canvas": view}
	for k, v := range extra {
		resp[k] = v
	}
	return c.JSON(resp)
}

// publish never fails the request; a lost event is only logged.
func (h *PlannerHandler) publish(c fiber.Ctx, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := h.events.Publish(c.Context(), ev); err != nil {
		h.logger.Warn("Event publish failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

func itemsOf(rooms []models.Room) []models.LayoutItem {
	items := make([]models.LayoutItem, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, r.Item())
	}
	return items
}

func decodeRequired(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(http.StatusBadRequest, "empty body")
	}
	return decodeOptional(c, v)
}

func decodeOptional(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	return nil
}

// fail переводит доменные ошибки в HTTP-ответ.
func (h *PlannerHandler) fail(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, editor.ErrCanvasNotFound),
		errors.Is(err, editor.ErrRoomNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoMetadata):
		status = http.StatusNotFound
	case errors.Is(err, editor.ErrLocked),
		errors.Is(err, editor.ErrBusy),
		errors.Is(err, editor.ErrNoSession),
		errors.Is(err, editor.ErrRoomActive),
		errors.Is(err, editor.ErrSessionActive),
		errors.Is(err, editor.ErrNoSpace):
		status = http.StatusConflict
	case errors.Is(err, editor.ErrBadHandle),
		errors.Is(err, editor.ErrBadTemplate),
		errors.Is(err, service.ErrInvalidMetadata),
		errors.Is(err, service.ErrUnsafeName),
		errors.Is(err, service.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrRendererUnavailable):
		status = http.StatusBadGateway
	}

	switch {
	case status == http.StatusBadGateway:
		h.logger.Warn("Renderer call failed", zap.String("path", c.Path()), zap.Error(err))
	case status >= http.StatusInternalServerError:
		h.logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
