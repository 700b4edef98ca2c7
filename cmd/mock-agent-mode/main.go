// Package main runs the mock Agent Mode service, an in-memory stand-in for
// the real service so the agentprobe harness can be exercised end to end.
// The served scenario is selected via configuration; broken-server scenarios
// are available as built-in presets.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agentmode/agentprobe/internal/common/logger"
	"github.com/agentmode/agentprobe/internal/mockservice"
	"github.com/agentmode/agentprobe/internal/tracing"
)

func main() {
	cfg, err := mockservice.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	scenario, err := mockservice.ResolveScenario(cfg.Scenario)
	if err != nil {
		log.Fatal("Failed to resolve scenario", zap.Error(err))
	}

	log.Info("Starting mock Agent Mode service",
		zap.String("scenario", scenario.Name),
		zap.String("adapter", scenario.Adapter),
		zap.Bool("healthy", scenario.IsHealthy()),
		zap.Int("seed_sessions", scenario.SeedSessions),
	)

	srv := mockservice.NewServer(scenario, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	go func() {
		log.Info("Mock Agent Mode service listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down mock Agent Mode service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Tracing shutdown error")
	}

	log.Info("Mock Agent Mode service stopped")
}
