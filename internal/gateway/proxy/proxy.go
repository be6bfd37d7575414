package proxy

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Proxy Handler
// ============================================================

// hopHeaders are not copied between the client and the upstream.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Content-Length":    true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
}

type Proxy struct {
	http   *resty.Client
	prefix string
	logger *zap.Logger
}

// New создает прокси. prefix отрезается от пути перед отправкой в сервис.
func New(prefix string, timeout time.Duration, logger *zap.Logger) *Proxy {
	client := resty.New().SetTimeout(timeout)
	return &Proxy{http: client, prefix: strings.TrimRight(prefix, "/"), logger: logger}
}

// To проксирует запрос в сервис по адресу baseURL, сохраняя путь и query.
func (p *Proxy) To(baseURL string) fiber.Handler {
	baseURL = strings.TrimRight(baseURL, "/")
	return func(c fiber.Ctx) error {
		return p.Forward(c, baseURL+p.upstreamPath(c))
	}
}

// Forward проксирует запрос по переданному URL. Тело уходит как есть,
// multipart вместе с исходной boundary.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	p.logger.Debug("Proxy request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("content_type", c.Get("Content-Type")),
		zap.Int("content_length", len(c.Body())),
		zap.String("target", targetURL),
	)

	req := p.http.R().SetContext(c.Context())
	for key, value := range c.GetReqHeaders() {
		if hopHeaders[key] || key == "Host" || len(value) == 0 {
			continue
		}
		req.SetHeader(key, value[0])
	}
	if body := c.Body(); len(body) > 0 {
		req.SetBody(body)
	}

	resp, err := req.Execute(c.Method(), targetURL)
	if err != nil {
		p.logger.Warn("Upstream unreachable", zap.String("target", targetURL), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}

	for key, values := range resp.Header() {
		if hopHeaders[key] || len(values) == 0 {
			continue
		}
		c.Set(key, values[0])
	}

	c.Status(resp.StatusCode())
	return c.Send(resp.Body())
}

func (p *Proxy) upstreamPath(c fiber.Ctx) string {
	path := strings.TrimPrefix(c.Path(), p.prefix)
	if path == "" {
		path = "/"
	}
	if query := string(c.Request().URI().QueryString()); query != "" {
		path += "?" + query
	}
	return path
}
