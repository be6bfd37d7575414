package main

import (
	"fmt"
	"os"
	"time"

	"floorplanner/internal/common/config"
	"floorplanner/internal/common/logger"
	"floorplanner/internal/common/middleware"
	"floorplanner/internal/renderer/handlers"
	"floorplanner/internal/renderer/mapper"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Renderer Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	log, err := logger.New(cfg.LogLevel, logger.Format(cfg.LogFormat, cfg.Environment), "renderer")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var opts []mapper.RendererOption
	if os.Getenv("RENDER_GRID") == "true" {
		opts = append(opts, mapper.WithGrid())
	}
	renderHandler := handlers.NewRenderHandler(mapper.NewRenderer(opts...), log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Renderer Service",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger("renderer"))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Renderer Routes
	// ============================================================

	renderHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("Starting Renderer Service", zap.String("addr", addr), zap.String("env", cfg.Environment))

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
