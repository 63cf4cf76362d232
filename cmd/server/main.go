package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"EarningsRadar/internal/cache"
	"EarningsRadar/internal/collector"
	"EarningsRadar/internal/config"
	"EarningsRadar/internal/scheduler"
	"EarningsRadar/internal/server"
	"EarningsRadar/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	bootLog := zerolog.New(os.Stderr)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("config validation")
	}

	log := newLogger(cfg.Log.Level)
	log.Info().Msg("EarningsRadar starting")

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0755); err != nil {
		log.Fatal().Err(err).Msg("create data directory")
	}

	// Durable stores
	profileStore, err := store.OpenProfileStore(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open profile store")
	}
	defer profileStore.Close()

	symbolsDoc := store.NewSymbolDocument(cfg.Storage.SymbolsFile)
	seed, err := symbolsDoc.Load()
	if err != nil {
		log.Warn().Err(err).Msg("load tracked symbols, starting empty")
	}
	tracked := cache.NewTrackedSet(seed...)
	log.Info().Int("symbols", tracked.Len()).Msg("tracked symbol set loaded")

	// Provider and collectors
	earningsCache := cache.NewEarnings()
	provider := collector.NewYahooProvider(cfg.DataSource.BaseURL, cfg.Proxy, log)
	log.Info().Str("provider", provider.Name()).Msg("data source ready")

	earnings := collector.NewEarningsCollector(provider, earningsCache, tracked, log)
	profiles := collector.NewProfileCollector(provider, profileStore, log)
	financials := collector.NewFinancialsCollector(provider, earningsCache, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	sched := scheduler.New(ctx, earnings, profiles, tracked, log)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Server.Port,
		Log:        log,
		BaseCtx:    ctx,
		Cache:      earningsCache,
		Tracked:    tracked,
		Earnings:   earnings,
		Profiles:   profiles,
		Financials: financials,
		Store:      profileStore,
		Symbols:    symbolsDoc,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("EarningsRadar is running")

	if cfg.RunOnStart {
		log.Info().Msg("run_on_start enabled, refreshing now")
		sched.RunNow()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("EarningsRadar stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(lvl).With().Timestamp().Logger()
}
