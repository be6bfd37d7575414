package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Import Handlers
// ============================================================

// ImportSVG распознает комнаты в svg из multipart/form-data.
func (h *RenderHandler) ImportSVG(c fiber.Ctx) error {
	data, err := h.readFile(c)
	if err != nil {
		return err
	}

	rooms, err := h.importer.Import(bytes.NewReader(data))
	if err != nil {
		h.logger.Warn("SVG import failed", zap.Error(err))
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.Info("SVG imported", zap.Int("rooms", len(rooms)))
	return c.JSON(fiber.Map{"rooms": rooms})
}

// ImportDXF распознает замкнутые контуры dxf как комнаты.
func (h *RenderHandler) ImportDXF(c fiber.Ctx) error {
	data, err := h.readFile(c)
	if err != nil {
		return err
	}

	rooms, err := h.importer.ImportDXF(bytes.NewReader(data))
	if err != nil {
		h.logger.Warn("DXF import failed", zap.Error(err))
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.Info("DXF imported", zap.Int("rooms", len(rooms)))
	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *RenderHandler) readFile(c fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "file required in multipart/form-data")
	}

	h.logger.Debug("File received", zap.String("name", file.Filename), zap.Int64("size", file.Size))

	f, err := file.Open()
	if err != nil {
		return nil, fiber.NewError(http.StatusInternalServerError, "failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(http.StatusInternalServerError, "failed to read file")
	}
	return data, nil
}
