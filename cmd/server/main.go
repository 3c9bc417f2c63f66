package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantshed/optiongreeks/internal/clients/ig"
	"github.com/quantshed/optiongreeks/internal/config"
	"github.com/quantshed/optiongreeks/internal/enrichment"
	"github.com/quantshed/optiongreeks/internal/instrument"
	"github.com/quantshed/optiongreeks/internal/scheduler"
	"github.com/quantshed/optiongreeks/internal/server"
	"github.com/quantshed/optiongreeks/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet, write straight to stderr
		fallbackLog := logger.New(logger.Config{Level: "error", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting option greeks service")

	// Load the market name → epic mapping
	markets, err := instrument.LoadTable(cfg.MarketMapPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MarketMapPath).Msg("Failed to load market mapping")
	}
	log.Info().Int("markets", markets.Len()).Msg("Market mapping loaded")

	// Initialize broker client
	client := ig.NewClient(cfg.IGBaseURL, cfg.IGAPIKey, cfg.IGUsername, cfg.IGPassword, log)

	// Try to authenticate at startup when credentials are configured.
	// A failure here is not fatal: POST /api/session can retry later.
	if cfg.IGUsername != "" && cfg.IGPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := client.Login(ctx); err != nil {
			log.Warn().Err(err).Msg("Startup login failed, continuing unauthenticated")
		} else {
			log.Info().Msg("Authenticated with broker gateway")
		}
		cancel()
	}

	// Initialize enrichment pipeline
	enricher := enrichment.NewService(client, markets, enrichment.Config{
		Concurrency:       cfg.EnrichConcurrency,
		DefaultVolatility: cfg.DefaultVolatility,
		RiskFreeRate:      cfg.RiskFreeRate,
	}, log)

	// Periodic snapshot refresh, only when a schedule is configured
	var snapshots *scheduler.SnapshotStore
	if cfg.RefreshSchedule != "" {
		snapshots = scheduler.NewSnapshotStore()

		sched := scheduler.New(log)
		job := scheduler.NewRefreshJob(client, enricher, snapshots, log)
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
		}
		sched.Start()
		defer sched.Stop()
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Session:   client,
		Positions: client,
		Enricher:  enricher,
		Snapshots: snapshots,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
