package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"floorplanner/internal/planner/models"

	"github.com/go-resty/resty/v2"
)

var (
	ErrRendererUnavailable = errors.New("renderer unavailable")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
)

// Formats lists the export formats and their content types.
var Formats = map[string]string{
	"svg":    "image/svg+xml",
	"pdf":    "application/pdf",
	"dxf":    "application/dxf",
	"xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"labels": "application/pdf",
	"png":    "image/png",
}

// FileName returns the download name for an exported layout.
func FileName(format string) string {
	if format == "labels" {
		return "layout-labels.pdf"
	}
	return "layout." + format
}

// ============================================================
// Renderer Client
// ============================================================

type RendererClient struct {
	http *resty.Client
}

func NewRendererClient(baseURL string) *RendererClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
	return &RendererClient{http: client}
}

// Export отправляет макет в renderer и возвращает готовый файл.
func (r *RendererClient) Export(ctx context.Context, format string, layout models.Layout) ([]byte, string, error) {
	contentType, ok := Formats[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	path := "/render"
	if format != "svg" {
		path += "/" + format
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(layout).
		Post(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("%w: renderer status %d", ErrRendererUnavailable, resp.StatusCode())
	}
	return resp.Body(), contentType, nil
}

type importResponse struct {
	Rooms []models.LayoutItem `json:"rooms"`
}

// ImportFormats lists the drawing formats the renderer can read rooms from.
var ImportFormats = map[string]bool{"svg": true, "dxf": true}

// Import отправляет чертёж в renderer /import/<format> и возвращает комнаты.
func (r *RendererClient) Import(ctx context.Context, format, filename string, data []byte) ([]models.LayoutItem, error) {
	if !ImportFormats[format] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var body importResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&body).
		Post("/import/" + format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: renderer status %d", ErrRendererUnavailable, resp.StatusCode())
	}
	return body.Rooms, nil
}
