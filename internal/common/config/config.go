package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	LogLevel  string
	LogFormat string

	CanvasWidth  int
	CanvasHeight int

	DBPath      string
	StorageRoot string

	CatalogURL      string
	CatalogCacheTTL time.Duration

	PlannerURL  string
	RendererURL string

	CORSOrigins []string

	Redis RedisConfig
	MQTT  MQTTConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		CanvasWidth:  getEnvAsInt("CANVAS_WIDTH", 1200),
		CanvasHeight: getEnvAsInt("CANVAS_HEIGHT", 800),

		DBPath:      getEnv("PLANNER_DB_PATH", "data/db/planner.db"),
		StorageRoot: getEnv("STORAGE_ROOT", "data/canvases"),

		CatalogURL:      os.Getenv("CATALOG_URL"),
		CatalogCacheTTL: time.Duration(getEnvAsInt("CATALOG_CACHE_TTL", 300)) * time.Second,

		PlannerURL:  getEnv("PLANNER_URL", "http://localhost:3002"),
		RendererURL: getEnv("RENDERER_URL", "http://localhost:3001"),

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		MQTT: MQTTConfig{
			Broker:      os.Getenv("MQTT_BROKER"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "floorplanner-planner"),
			Username:    os.Getenv("MQTT_USERNAME"),
			Password:    os.Getenv("MQTT_PASSWORD"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "floorplanner/events"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
