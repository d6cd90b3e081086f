package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"guesswho_backend/internal/logger"
)

// Connect открывает пул к postgres и проверяет его пингом
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("ошибка конфигурации пула postgres", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("postgres недоступен", "error", err)
	}

	logger.Info("postgres подключен")
	return pool
}
