package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crypto-trader/backend/internal/api"
	"crypto-trader/backend/internal/auth"
	"crypto-trader/backend/internal/config"
	"crypto-trader/backend/internal/logging"
	"crypto-trader/backend/internal/supabase"
)

const (
	shutdownGracePeriod = 10 * time.Second
	readinessAttempts   = 10
	readinessInterval   = 2 * time.Second
)

// Options carries the command-line overrides from cmd/server.
type Options struct {
	EnvFile string
	Port    int
	LogFile string
}

// Run assembles the application and serves it until a shutdown signal
// arrives. The returned value is the process exit code.
func Run(opts Options) int {
	// Settings decide the real logger's configuration, so the loader reports
	// through a bootstrap handle with defaults.
	bootLogger, err := logging.Setup(logging.Options{Level: "INFO", JSONFormat: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize bootstrap logger: %v\n", err)
		return 1
	}

	cfg, err := config.Load(bootLogger, &config.Overrides{
		EnvFile: opts.EnvFile,
		Port:    opts.Port,
		LogFile: opts.LogFile,
	})
	if err != nil {
		// The loader already logged the failure.
		return 1
	}

	logger, err := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		ToFile:     cfg.LogToFile,
		FilePath:   cfg.LogFile,
		JSONFormat: cfg.LogJSON,
	})
	if err != nil {
		bootLogger.Error("Failed to configure logging", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	issuer, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.Algorithm, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	if err != nil {
		logger.Error("Failed to initialize token issuer", zap.Error(err))
		return 1
	}

	sb := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
	waitForSupabase(logger, sb)

	handler := api.NewHandler(cfg, logger, issuer, sb)
	router := api.NewRouter(handler, logger, cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	logger.Info("Starting API",
		zap.String("project", cfg.ProjectName),
		zap.Int("port", cfg.ServerPort),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			return 1
		}
	case <-quit:
		logger.Info("Shutting down API", zap.String("project", cfg.ProjectName))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown failed", zap.Error(err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("Forced close failed", zap.Error(closeErr))
			}
		}
	}

	return 0
}

// waitForSupabase gives the downstream dependency a bounded window to come
// up. The server starts regardless; until the dependency answers, the
// readiness probe reports it as unavailable.
func waitForSupabase(logger *zap.Logger, checker supabase.HealthChecker) {
	for attempt := 1; attempt <= readinessAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), readinessInterval)
		err := checker.Health(ctx)
		cancel()
		if err == nil {
			logger.Info("Supabase is reachable")
			return
		}
		logger.Debug("Supabase not ready yet, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(readinessInterval)
	}
	logger.Warn("Supabase still unreachable after retries, starting anyway")
}
