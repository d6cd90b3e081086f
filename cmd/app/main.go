package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guesswho_backend/internal/config"
	"guesswho_backend/internal/db"
	httpServer "guesswho_backend/internal/http"
	"guesswho_backend/internal/http/handlers"
	"guesswho_backend/internal/http/middleware"
	"guesswho_backend/internal/kv"
	"guesswho_backend/internal/lock"
	"guesswho_backend/internal/logger"
	"guesswho_backend/internal/repository"
	"guesswho_backend/internal/service"
	"guesswho_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	// Инициализация структурированного логгера
	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	cfg := config.Load()
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	// Эфемерное хранилище: redis в проде, память для одного процесса
	var store kv.Store
	if cfg.StoreBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis недоступен", "addr", cfg.RedisAddr, "error", err)
		}
		store = kv.NewRedis(rdb)
		log.Info("эфемерное хранилище: redis", "addr", cfg.RedisAddr)
	} else {
		store = kv.NewMemory()
		log.Warn("эфемерное хранилище: in-memory, состояние не переживет рестарт")
	}

	locker := lock.New(store)
	lobbyRepo := repository.NewLobbyRepository(store)
	gameRepo := repository.NewGameRepository(store)
	userRepo := repository.NewUserRepository(dbPool)
	characterRepo := repository.NewCharacterRepository(dbPool)

	hub := ws.NewHub(service.NewChannelAuthorizer(lobbyRepo, gameRepo))

	lobbyService := service.NewLobbyService(lobbyRepo, locker, userRepo, hub)
	gameService := service.NewGameService(lobbyRepo, gameRepo, locker, userRepo, characterRepo, hub)
	handler := handlers.NewHandler(lobbyService, gameService, userRepo)

	r := gin.Default()

	// CORS для прода и связи фронта с бэкендом(разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, handler, hub, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
