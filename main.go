package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"zonaprop-watcher/config"
	"zonaprop-watcher/notifier"
	"zonaprop-watcher/scraper/zonaprop"
	"zonaprop-watcher/services"
	"zonaprop-watcher/storage"
	"zonaprop-watcher/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger("info").Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Zonaprop Watcher starting ===")
	logger.Info("Config: searches: %d | poll: %s | concurrency: %d | rate: %dms | run once: %t",
		len(cfg.SearchURLs), cfg.Interval(), cfg.MaxConcurrency, cfg.RateLimitMs, cfg.RunOnce)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	logger.Info("=== Zonaprop Watcher stopped ===")
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if n, err := store.Count(ctx); err == nil {
		logger.Info("Seen store holds %d listings", n)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	notify, err := notifier.New(cfg, os.Stdout, logger)
	if err != nil {
		return err
	}

	fetcher, err := zonaprop.NewChromeFetcher(cfg, logger)
	if err != nil {
		logger.Error("Make sure Chrome or Chromium is installed, or set CHROME_BIN")
		return err
	}
	defer fetcher.Close()

	source := zonaprop.New(cfg, fetcher, logger)
	watcher := services.NewWatcher(cfg, source, store, csvWriter, notify, logger)
	return watcher.Run(ctx, os.Stdout)
}

// openStore uses PostgreSQL when DATABASE_URL is set and a SQLite file in
// the cache directory otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.SQLStore, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("Using PostgreSQL seen store")
		store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Make sure Docker is running: docker compose up -d")
		}
		return store, err
	}

	path := filepath.Join(cfg.CachePath, "seen.db")
	logger.Info("Using SQLite seen store at %s", path)
	return storage.NewSQLiteStore(ctx, path, logger)
}
