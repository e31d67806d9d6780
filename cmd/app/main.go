package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benisnotitdog/task-manager-api/internal/config"
	"github.com/benisnotitdog/task-manager-api/internal/db"
	httpServer "github.com/benisnotitdog/task-manager-api/internal/http"
	"github.com/benisnotitdog/task-manager-api/internal/logger"
	"github.com/benisnotitdog/task-manager-api/internal/repository"
	"github.com/benisnotitdog/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	tokens, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	if err != nil {
		logger.Fatal("invalid jwt configuration", "error", err)
	}

	dbPool := db.Connect(cfg.DatabaseURL, cfg.DBMaxConns)
	defer dbPool.Close()

	auth := service.NewAuthService(
		repository.NewUserRepository(dbPool),
		service.NewPasswordHasher(cfg.BcryptCost),
		tokens,
	)
	tasks := service.NewTaskService(repository.NewTaskRepository(dbPool))

	r := httpServer.NewRouter(httpServer.Deps{
		Auth:           auth,
		Tasks:          tasks,
		DB:             dbPool,
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version, "token_ttl", tokens.TTL().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
