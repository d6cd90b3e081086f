package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"guesswho_backend/internal/logger"
)

// Config - вся конфигурация процесса из окружения
type Config struct {
	AppPort       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// redis | memory; memory - один процесс, для разработки и тестов
	StoreBackend  string
	AllowedOrigin string
}

// Load читает .env (если есть) и окружение
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env не найден, используется окружение", "error", err)
	}

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StoreBackend:  getEnv("STORE_BACKEND", "redis"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			cfg.RedisDB = parsed
		}
	}
	if cfg.RedisAddr == "" {
		cfg.StoreBackend = "memory"
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
