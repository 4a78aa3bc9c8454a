package main

import (
	"context"
	"os"
	"time"

	"go-jobmatcher/internal/api"
	"go-jobmatcher/internal/browser"
	"go-jobmatcher/internal/config"
	"go-jobmatcher/internal/database"
	"go-jobmatcher/internal/dedup"
	"go-jobmatcher/internal/logging"
	"go-jobmatcher/internal/pipeline"
	"go-jobmatcher/internal/reporter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer repo.Close(context.Background())

	runner := &pipeline.Runner{
		NewBrowser: func(ctx context.Context) (pipeline.Browser, error) {
			return browser.New(ctx, browser.Options{
				Email:        cfg.LinkedInEmail,
				Password:     cfg.LinkedInPassword,
				LoginTimeout: cfg.Scraper.LoginTimeout,
				Headless:     true,
				Log:          log,
			})
		},
		Store: repo,
		Cache: dedup.NewSeenCache(cfg.Scraper.CachePath, log),
		Cfg:   cfg.Scraper,
		Log:   log,
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := reporter.NewTelegramReporter(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("telegram reporter disabled", "error", err)
		} else {
			runner.Notifier = tg
		}
	}

	handler := api.NewHandler(repo, runner, log)
	router := api.SetupRouter(handler, log)

	log.Info("🌐 server listening", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
