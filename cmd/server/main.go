package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/fx-sentinel/internal/cache"
	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/database"
	"github.com/aristath/fx-sentinel/internal/events"
	"github.com/aristath/fx-sentinel/internal/marketdata"
	"github.com/aristath/fx-sentinel/internal/modules/hedging"
	"github.com/aristath/fx-sentinel/internal/modules/risk"
	"github.com/aristath/fx-sentinel/internal/modules/risk/jobs"
	"github.com/aristath/fx-sentinel/internal/scheduler"
	"github.com/aristath/fx-sentinel/internal/server"
	"github.com/aristath/fx-sentinel/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{Level: "info"})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting FX Sentinel")

	// Market data
	provider := marketdata.NewStaticProvider()
	if cfg.MarketDataPath != "" {
		if err := provider.LoadFile(cfg.MarketDataPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.MarketDataPath).Msg("Failed to load market data")
		}
	}

	// Assessment cache
	var assessmentCache cache.AssessmentCache
	switch cfg.CacheBackend {
	case "sqlite":
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		assessmentCache = cache.NewSQLite(db, log)
	default:
		assessmentCache = cache.NewMemory()
	}
	defer assessmentCache.Close()

	// Services
	eventManager := events.NewManager(log)
	params := config.DefaultRiskParams()

	riskService := risk.NewService(provider, assessmentCache, eventManager, params, log)
	hedgingService := hedging.NewService(params, eventManager, log)

	// Scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	reassess := jobs.NewReassessJob(riskService, log)
	if err := sched.AddJob(cfg.ReassessSchedule, reassess); err != nil {
		log.Fatal().Err(err).Msg("Failed to register reassessment job")
	}

	// HTTP server
	srv := server.New(server.Config{
		Port:           cfg.Port,
		Log:            log,
		Config:         cfg,
		RiskHandler:    risk.NewHandler(riskService, log),
		HedgingHandler: hedging.NewHandler(riskService, hedgingService, log),
		DevMode:        cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
