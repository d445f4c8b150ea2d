package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/api"
	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logging"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scanner"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/internal/universe"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	envFile := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		envFile = v
	}
	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("SignalSentinel starting")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data source
	fetcher := newFetcher(cfg)
	col := collector.NewCollector(fetcher, cfg.DataSource.Days, cfg.Engine.MinBars)
	log.Info().Str("provider", fetcher.Name()).Int("days", cfg.DataSource.Days).Msg("data source ready")

	// Alert dedupe and bar cache
	var dedupe scanner.Deduper = cache.NewMemoryStore()
	checks := map[string]func(context.Context) error{}
	if cfg.Redis.Addr != "" {
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			AlertTTL: cfg.Redis.AlertTTL,
			BarTTL:   cfg.Redis.BarTTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory dedupe")
		} else {
			defer store.Close()
			dedupe = store
			col.Cache = store
			checks["redis"] = store.Ping
		}
	}

	// Recorder
	rec := newRecorder(cfg)
	defer rec.Close()

	// Sinks
	var sinks notifier.Multi
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sinks = append(sinks, &notifier.Retrying{Sink: tn, MaxRetries: cfg.Telegram.MaxRetries})
	}
	if cfg.Webhook.URL != "" {
		sinks = append(sinks, &notifier.Retrying{Sink: notifier.NewWebhookNotifier(cfg.Webhook.URL), MaxRetries: cfg.Telegram.MaxRetries})
	}
	var sink notifier.Sink = sinks
	if len(sinks) == 0 {
		log.Warn().Msg("no notification sink configured, alerts go to the log")
		sink = notifier.LogSink{}
	}

	// Engine and scanner
	m := metrics.New()
	sc := scanner.New(scanner.Deps{
		Source:   col,
		Engine:   strategy.NewEngine(cfg.Engine),
		Sink:     sink,
		Dedupe:   dedupe,
		Recorder: rec,
		Metrics:  m,
	}, scanner.Options{
		Concurrency:       cfg.Scan.Concurrency,
		RequestsPerSecond: cfg.Scan.RequestsPerSecond,
		Currency:          cfg.Scan.Currency,
		SendSummary:       cfg.Scan.SendSummary,
	})

	loadUniverse := func() ([]string, error) {
		return universe.Load(cfg.Universe.Files, cfg.Universe.Symbols, cfg.Universe.AlphaOnly)
	}
	loc, _ := cfg.Location()
	sched := scheduler.NewScheduler(ctx, sc, loadUniverse, loc)

	// One-shot mode for external schedulers
	if os.Getenv("RUN_ONCE") == "true" {
		if _, err := sched.RunScanNow(model.TriggerManual); err != nil {
			log.Fatal().Err(err).Msg("scan")
		}
		return
	}

	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Telegram commands
	if tn != nil && cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// HTTP API
	var srv *api.Server
	if cfg.HTTP.Addr != "" {
		srv = api.NewServer(api.Config{
			Addr:        cfg.HTTP.Addr,
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Release:     true,
			Checks:      checks,
		}, sc, sched.RunScanNow, rec, m)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		go func() {
			if _, err := sched.RunScanNow(model.TriggerStartup); err != nil {
				log.Error().Err(err).Msg("startup scan")
			}
		}()
	}

	log.Info().Time("next_scan", sched.NextRun()).Msg("SignalSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}
	log.Info().Msg("SignalSentinel stopped")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderREST:
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, ds.DataPath, cfg.Proxy)
	case config.ProviderCSV:
		return collector.NewCSVFetcher(ds.CSVDir, ds.HeaderRows)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 1000}
	default:
		return collector.NewYahooFetcher(ds.Suffix, cfg.Proxy)
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Warn().Err(err).Msg("create database directory")
		}
		r, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			return recorder.NewNoopRecorder()
		}
		return r
	case config.DriverPostgres:
		r, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err != nil {
			log.Warn().Err(err).Msg("init postgres recorder failed, using noop")
			return recorder.NewNoopRecorder()
		}
		return r
	default:
		return recorder.NewNoopRecorder()
	}
}

