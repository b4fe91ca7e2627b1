package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/config"
	"github.com/execution-hub/supervisor/internal/dependency"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := zerolog.New(os.Stdout).Level(cfg.LogLevel).With().Timestamp().Logger()

	c, err := dependency.New(cfg, logger)
	if err != nil {
		log.Fatalf("wiring error: %v", err)
	}
	logger.Info().Int("workers", len(c.Registry().All())).Str("assist", cfg.AssistWorkerID).Msg("worker catalogue loaded")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// background health sweeps
	if cfg.HealthMonitor {
		if err := c.Monitor().Start(ctx, cfg.HealthSchedule); err != nil {
			log.Fatalf("health monitor error: %v", err)
		}
	}

	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     c.Server().Router(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: event streams stay open. Dispatch routes carry their own.
		IdleTimeout: 60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")
	stop()
	c.Monitor().Stop()
	c.Hub().Stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
