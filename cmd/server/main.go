package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"customsdesk/internal/app"
	"customsdesk/internal/config"
	"customsdesk/internal/handler"
	"customsdesk/internal/logging"
	"customsdesk/internal/port"
	"customsdesk/internal/router"
	s3storage "customsdesk/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flush, err := logging.Install(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer flush()
	logger := zap.L()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage (optional)
	var storage port.ObjectStorage
	checks := map[string]handler.ReadinessCheck{}
	if cfg.S3.Enabled() {
		s3Client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s3Client
		checks["storage"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s3Client.Ping(ctx)
		}
	} else {
		logger.Info("S3 bucket not configured; link output and storage intake disabled")
	}

	// Initialize services
	declarationSvc, err := app.NewDeclarationService(cfg, storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize declaration service: %w", err)
	}

	// Initialize handlers
	declarationH := handler.NewDeclarationHandler(declarationSvc, cfg.Server.MaxUploadMB<<20, cfg.Intake.MessageLimit)
	healthH := handler.NewHealthHandler(checks)

	// Setup router
	r := router.Setup(logger.Named("http"), cfg.CORS.AllowedOrigins, declarationH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("provider", cfg.Extractor.Provider),
			zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
