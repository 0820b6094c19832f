package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/pricetrack/internal/cache"
	"github.com/rickgao/pricetrack/internal/config"
	"github.com/rickgao/pricetrack/internal/database"
	"github.com/rickgao/pricetrack/internal/poller"
	"github.com/rickgao/pricetrack/internal/server"
	"github.com/rickgao/pricetrack/internal/service"
	"github.com/rickgao/pricetrack/internal/source"
	"github.com/rickgao/pricetrack/internal/store"
	"github.com/rickgao/pricetrack/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.yaml", "path to config file")
	devMode := flag.Bool("dev", false, "run with an in-memory store (no database)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pairs, err := cfg.TrackedPairs()
	if err != nil {
		logger.Error("failed to parse tracked pairs", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"pairs", len(pairs),
		"poll_interval", cfg.Poller.Interval,
		"retention", cfg.Retention.Window,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect storage
	var st store.Store
	if *devMode {
		logger.Warn("dev mode: using in-memory store, prices are not durable")
		st = store.NewMemory()
	} else {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool, logger)
		if err := pg.Init(ctx); err != nil {
			logger.Error("failed to initialize schema", "error", err)
			os.Exit(1)
		}
		st = pg

		logger.Info("database connected")
	}

	// Create price source client
	client := source.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		source.WithLogger(logger),
		source.WithTimeout(cfg.API.Timeout),
		source.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	// Read cache with background sweep
	readCache := cache.New()
	readCache.StartSweeper(ctx, cfg.Cache.SweepInterval, logger)

	// Price service façade; the HTTP layer depends only on this.
	svc := service.New(service.Config{
		PriceTTL:   cfg.Cache.PriceTTL,
		HistoryTTL: cfg.Cache.HistoryTTL,
		Window:     cfg.Retention.Window,
	}, st, readCache, pairs, logger)

	// Start the poller
	p := poller.New(poller.Config{
		Interval:      cfg.Poller.Interval,
		CycleTimeout:  cfg.Poller.CycleTimeout,
		Retention:     cfg.Retention.Window,
		PruneInterval: cfg.Retention.PruneInterval,
	}, client, st, pairs, logger)

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// Start the HTTP API
	srv := server.New(fmt.Sprintf(":%d", cfg.Server.Port), svc, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("tracker running",
		"api_url", fmt.Sprintf("http://localhost:%d/api", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller shutdown", "error", err)
	}

	logger.Info("tracker stopped")
}
