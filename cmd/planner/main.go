package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"floorplanner/internal/common/config"
	"floorplanner/internal/common/logger"
	"floorplanner/internal/common/middleware"
	"floorplanner/internal/geometry"
	"floorplanner/internal/planner/catalog"
	"floorplanner/internal/planner/editor"
	"floorplanner/internal/planner/events"
	"floorplanner/internal/planner/handlers"
	"floorplanner/internal/planner/repository"
	"floorplanner/internal/planner/service"
	"floorplanner/internal/planner/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Planner Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3002"
	}

	log, err := logger.New(cfg.LogLevel, logger.Format(cfg.LogFormat, cfg.Environment), "planner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatal("init db", zap.Error(err))
	}

	cache := templateCache(cfg, log)
	templates := catalog.New(cfg.CatalogURL, cache, cfg.CatalogCacheTTL, log)
	storage := service.NewFileStorage(cfg.StorageRoot)
	renderer := service.NewRendererClient(cfg.RendererURL)
	bounds := geometry.Bounds{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight}

	plannerHandler := handlers.NewPlannerHandler(editor.NewRegistry(), repo, templates, storage, renderer, bounds, log)
	if cfg.MQTT.Broker != "" {
		publisher, err := events.NewMQTT(events.MQTTConfig{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			log.Warn("MQTT unavailable, layout events disabled", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			defer publisher.Close()
			plannerHandler.WithEvents(publisher)
			log.Info("Publishing layout events", zap.String("broker", cfg.MQTT.Broker), zap.String("prefix", cfg.MQTT.TopicPrefix))
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planner Service",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.Logger("planner"))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := repo.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Planner Routes
	// ============================================================

	plannerHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("Starting Planner Service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("renderer", cfg.RendererURL),
	)

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// templateCache uses redis when REDIS_ADDR is set and reachable, otherwise
// an in-process cache.
func templateCache(cfg *config.Config, log *zap.Logger) store.KV {
	if cfg.Redis.Addr == "" {
		return store.NewMemoryKV()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := kv.Ping(ctx); err != nil {
		log.Warn("Redis unavailable, using in-memory template cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return store.NewMemoryKV()
	}
	log.Info("Template cache on redis", zap.String("addr", cfg.Redis.Addr))
	return kv
}
