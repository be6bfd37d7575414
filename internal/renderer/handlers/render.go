package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"floorplanner/internal/renderer/export"
	"floorplanner/internal/renderer/mapper"
	"floorplanner/internal/renderer/models"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Render Handler
// ============================================================

type RenderHandler struct {
	svg      *mapper.Renderer
	importer *mapper.Importer
	logger   *zap.Logger
}

func NewRenderHandler(svg *mapper.Renderer, logger *zap.Logger) *RenderHandler {
	return &RenderHandler{
		svg:      svg,
		importer: mapper.NewImporter(),
		logger:   logger,
	}
}

func (h *RenderHandler) Register(r fiber.Router) {
	r.Post("/render", h.RenderSVG)
	r.Post("/render/svg", h.RenderSVG)
	r.Post("/render/pdf", h.RenderPDF)
	r.Post("/render/dxf", h.RenderDXF)
	r.Post("/render/xlsx", h.RenderXLSX)
	r.Post("/render/labels", h.RenderLabels)
	r.Post("/render/png", h.RenderPNG)

	r.Post("/import/svg", h.ImportSVG)
	r.Post("/import/dxf", h.ImportDXF)
}

// RenderSVG конвертирует сохранённый макет в SVG.
func (h *RenderHandler) RenderSVG(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	svg, err := h.svg.Render(layout)
	if err != nil {
		return h.fail(c, "svg", err)
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

func (h *RenderHandler) RenderPDF(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.PDF(&buf, layout); err != nil {
		return h.fail(c, "pdf", err)
	}

	c.Set("Content-Type", "application/pdf")
	return c.Send(buf.Bytes())
}

func (h *RenderHandler) RenderDXF(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	data, err := export.DXF(layout)
	if err != nil {
		return h.fail(c, "dxf", err)
	}

	c.Set("Content-Type", "application/dxf")
	return c.Send(data)
}

func (h *RenderHandler) RenderXLSX(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	data, err := export.XLSX(layout)
	if err != nil {
		return h.fail(c, "xlsx", err)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(data)
}

func (h *RenderHandler) RenderPNG(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.PNG(&buf, layout); err != nil {
		return h.fail(c, "png", err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(buf.Bytes())
}

// RenderLabels печатает лист этикеток с QR-кодом для каждой комнаты.
func (h *RenderHandler) RenderLabels(c fiber.Ctx) error {
	layout, err := h.decode(c)
	if err != nil {
		return err
	}

	if len(layout.Rooms) == 0 {
		return fiber.NewError(http.StatusBadRequest, "layout has no rooms")
	}

	var buf bytes.Buffer
	if err := export.Labels(&buf, layout); err != nil {
		return h.fail(c, "labels", err)
	}

	c.Set("Content-Type", "application/pdf")
	return c.Send(buf.Bytes())
}

// ============================================================
// Helpers
// ============================================================

func (h *RenderHandler) decode(c fiber.Ctx) (*models.Layout, error) {
	if len(c.Body()) == 0 {
		return nil, fiber.NewError(http.StatusBadRequest, "body required")
	}

	var layout models.Layout
	if err := json.Unmarshal(c.Body(), &layout); err != nil {
		h.logger.Debug("Decode error", zap.Error(err))
		return nil, fiber.NewError(http.StatusBadRequest, "invalid JSON payload")
	}
	return &layout, nil
}

func (h *RenderHandler) fail(c fiber.Ctx, format string, err error) error {
	h.logger.Error("Render failed", zap.String("format", format), zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
