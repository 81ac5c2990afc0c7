package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certifiedcode/memberguard/internal/config"
	"github.com/certifiedcode/memberguard/internal/container"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Initialize()

	ctx := context.Background()
	c, err := container.Build(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("Failed to build services", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("MemberGuard starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := c.Cleanup(shutdownCtx); err != nil {
		logger.WarnWithFields("Cleanup finished with errors", err)
	}

	logger.Log.Info("Server exited")
}
