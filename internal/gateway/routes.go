package gateway

import (
	"floorplanner/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Service Routes (Proxy)
// ============================================================

// Register вешает проксирующие маршруты на api (/api/v1).
func Register(api fiber.Router, p *proxy.Proxy, plannerURL, rendererURL string) {
	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Floor Planner API v1",
			"status":  "ok",
		})
	})

	// Planner Service
	planner := p.To(plannerURL)
	api.Get("/templates", planner)
	api.All("/canvases", planner)
	api.All("/canvases/*", planner)
	api.All("/layouts", planner)
	api.All("/layouts/*", planner)

	// Renderer Service
	renderer := p.To(rendererURL)
	api.Post("/render", renderer)
	api.Post("/render/*", renderer)
	api.Post("/import/*", renderer)
}
