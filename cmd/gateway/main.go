package main

import (
	"fmt"
	"os"
	"time"

	"floorplanner/docs"
	"floorplanner/internal/common/config"
	"floorplanner/internal/common/logger"
	"floorplanner/internal/common/middleware"
	"floorplanner/internal/gateway"
	"floorplanner/internal/gateway/handlers"
	"floorplanner/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, logger.Format(cfg.LogFormat, cfg.Environment), "gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.Logger("gateway"))

	// ============================================================
	// Health Check Routes
	// ============================================================

	readiness := handlers.NewReadiness(map[string]string{
		"planner":  cfg.PlannerURL,
		"renderer": cfg.RendererURL,
	}, log)

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", readiness.ReadinessProbe)
	app.Get("/health/startup", handlers.StartupProbe)

	apiDocs := handlers.NewDocs(docs.OpenAPI, "/docs/openapi.yaml", "Floor Planner API", "/api/v1")
	app.Get("/docs", apiDocs.UI)
	app.Get("/docs/openapi.yaml", apiDocs.Spec)

	// ============================================================
	// API Routes
	// ============================================================

	p := proxy.New("/api/v1", time.Duration(cfg.WriteTimeout)*time.Second, log)
	gateway.Register(app.Group("/api/v1"), p, cfg.PlannerURL, cfg.RendererURL)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("Starting API Gateway",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("planner", cfg.PlannerURL),
		zap.String("renderer", cfg.RendererURL),
	)

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
