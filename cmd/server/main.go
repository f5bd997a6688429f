package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/config"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/database"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/eastmoney"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/history"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/holdings"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/logger"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/quote"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/scheduler"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/sina"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/ttfund"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/version"
)

func main() {
	// Load configuration
	cfg, cfgErr := config.Load()

	logr := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(logr)

	// Invalid values fall back to their defaults, so keep running
	if cfgErr != nil {
		logr.Warn().Err(cfgErr).Msg("Some configuration values were invalid, using defaults")
	}
	logr.Info().Str("version", version.Version).Msg("Starting fund NAV estimator")

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	schemaVersion, err := database.Migrate(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logr.Info().Str("path", cfg.Database.Path).Int64("schema_version", schemaVersion).Msg("Connected to database")

	// Upstream clients
	eastmoneyClient := eastmoney.NewClient(cfg.Upstream.EastmoneyF10URL, cfg.Upstream.EastmoneyAPIURL, cfg.Upstream.Timeout, logr)
	sinaClient := sina.NewClient(cfg.Upstream.SinaQuoteURL, cfg.Upstream.SinaSuggestURL, cfg.Upstream.Timeout, logr)
	ttfundClient := ttfund.NewClient(cfg.Upstream.TTFundURL, cfg.Upstream.Timeout, logr)

	// Pipeline stages
	resolver := holdings.NewResolver(eastmoneyClient, sinaClient, holdings.Thresholds{
		LowWeight:    cfg.Estimator.FeederLowWeight,
		HighWeight:   cfg.Estimator.FeederHighWeight,
		TargetWeight: cfg.Estimator.FeederTargetWeight,
	}, logr)
	quoteFetcher := quote.NewFetcher(sinaClient, cfg.Estimator.QuoteBatchSize, quote.DefaultWorkers, logr)
	historyFetcher := history.NewFetcher(eastmoneyClient, cfg.Estimator.HistoryPageSize, cfg.Estimator.HistoryWorkers, logr)

	// Create repositories
	modeRepo := repository.NewModeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	intradayRepo := repository.NewIntradayRepository(db)

	// Create services
	systemService := service.NewSystemService(db, map[string]bool{
		"scheduled_refresh": cfg.Refresh.Enabled,
		"realtime_fallback": cfg.Estimator.RealtimeFallback,
	})
	historyService := service.NewHistoryService(historyFetcher, historyRepo, cfg.Estimator.HistoryCacheTTL, logr)
	modeService := service.NewModeService(modeRepo, cfg.Estimator.DefaultMode)
	intradayService := service.NewIntradayService(intradayRepo, logr)
	estimatorService := service.NewEstimatorService(
		resolver,
		quoteFetcher,
		historyService,
		ttfundClient,
		service.EstimatorOptions{
			Workers:          cfg.Estimator.FundWorkers,
			HistoryDays:      cfg.Estimator.HistoryDays,
			DefaultMode:      cfg.Estimator.DefaultMode,
			RealtimeFallback: cfg.Estimator.RealtimeFallback,
		},
		logr,
	)
	boardService := service.NewBoardService(estimatorService, modeService, intradayService, cfg.Estimator.FundCodes, logr)

	if len(boardService.Codes()) == 0 {
		logr.Warn().Msg("FUND_CODES is empty, the board will stay empty")
	}

	// Background jobs
	sched := scheduler.New(logr)
	if cfg.Refresh.Enabled {
		if err := sched.AddJob(cfg.Refresh.Schedule, boardService); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule board refresh")
		}
		sched.RunInBackground(boardService)
	}
	pruneJob := scheduler.NewFuncJob("intraday-prune", func(ctx context.Context) error {
		removed, err := intradayService.Prune(ctx, cfg.Refresh.IntradayRetentionDays)
		if err == nil && removed > 0 {
			logr.Info().Int64("removed", removed).Msg("Pruned intraday estimates")
		}
		return err
	})
	if err := sched.AddJob(cfg.Refresh.PruneSchedule, pruneJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule intraday prune")
	}
	sched.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Estimator: estimatorService,
		Modes:     modeService,
		History:   historyService,
		Intraday:  intradayService,
		Board:     boardService,
	}, cfg, logr)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logr.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info().Msg("Shutting down server...")
	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logr.Info().Msg("Server exited")
}
