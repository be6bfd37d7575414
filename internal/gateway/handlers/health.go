package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}

// Readiness checks that every upstream answers its own /health/ready.
type Readiness struct {
	http      *resty.Client
	upstreams map[string]string
	logger    *zap.Logger
}

func NewReadiness(upstreams map[string]string, logger *zap.Logger) *Readiness {
	return &Readiness{
		http:      resty.New().SetTimeout(2 * time.Second),
		upstreams: upstreams,
		logger:    logger,
	}
}

// ReadinessProbe проверяет готовность приложения и сервисов за ним.
func (r *Readiness) ReadinessProbe(c fiber.Ctx) error {
	services := fiber.Map{}
	ready := true
	for name, baseURL := range r.upstreams {
		if err := r.check(c.Context(), baseURL); err != nil {
			r.logger.Warn("Upstream not ready", zap.String("service", name), zap.Error(err))
			services[name] = "down"
			ready = false
			continue
		}
		services[name] = "ready"
	}

	if !ready {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"services": services,
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ready",
		"services": services,
	})
}

func (r *Readiness) check(ctx context.Context, baseURL string) error {
	resp, err := r.http.R().SetContext(ctx).Get(strings.TrimRight(baseURL, "/") + "/health/ready")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fiber.NewError(resp.StatusCode(), resp.Status())
	}
	return nil
}
