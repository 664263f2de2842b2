package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Storage
	StorageDriver string // "redis" | "postgres" | "memory"
	RedisURL      string
	DatabaseURL   string
	StorageKey    string

	// Watch state
	WatchedThreshold float64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		StorageDriver:    getEnvOrDefault("STORAGE_DRIVER", "redis"),
		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		StorageKey:       getEnvOrDefault("STORAGE_KEY", "video_store"),
		WatchedThreshold: getEnvAsFloatOrDefault("WATCHED_THRESHOLD", 0.9),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.StorageDriver == "postgres" && cfg.DatabaseURL == "" {
		panic(fmt.Sprintf("DATABASE_URL is required when STORAGE_DRIVER=%s", cfg.StorageDriver))
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
