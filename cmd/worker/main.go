package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/config"
	"bookrental-backend/internal/infrastructure/storage"
	"bookrental-backend/pkg/container"
	"bookrental-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	sharedCfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[Config] Failed to load")
	}
	logger.Init(sharedCfg.App.Environment, sharedCfg.App.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	cfg := loadConfig(sharedCfg)
	ctx := context.Background()

	// Initialize container
	c, err := container.Build(ctx, sharedCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	reports, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("[Storage] Failed to initialize report storage")
	}

	checker := newHealthChecker(cfg, reports)
	defer checker.Close()
	if err := checker.checkAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	handlers := initializeHandlers(c, cfg, reports)
	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)
	health := startHealthCheckServer(cfg.HealthAddr, checker)

	waitForShutdown(srv, scheduler, health)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler, health *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = health.Shutdown(ctx)

	log.Info().Msg("[Shutdown] Stopped")
}
