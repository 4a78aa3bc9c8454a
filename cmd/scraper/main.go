package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"go-jobmatcher/internal/browser"
	"go-jobmatcher/internal/config"
	"go-jobmatcher/internal/database"
	"go-jobmatcher/internal/dedup"
	"go-jobmatcher/internal/logging"
	"go-jobmatcher/internal/models"
	"go-jobmatcher/internal/pipeline"
	"go-jobmatcher/internal/reporter"
)

func main() {
	var (
		keywords      = flag.String("keywords", "", "comma-separated title keywords")
		locations     = flag.String("locations", "", "comma-separated desired locations")
		contractTypes = flag.String("contract-types", "", "comma-separated contract types (cdi, cdd, stage, freelance, alternance)")
		maxPages      = flag.Int("max-pages", 0, "number of result pages to walk (default from config)")
		userID        = flag.String("user", "", "user id to attribute the session to")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level)

	if err := cfg.ValidateCredentials(); err != nil {
		log.Error("missing credentials", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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

	params := pipeline.Params{
		SearchQuery:   *keywords,
		Keywords:      splitList(*keywords),
		Locations:     splitList(*locations),
		ContractTypes: splitList(*contractTypes),
		MaxPages:      *maxPages,
	}

	sess := &models.ScrapingSession{
		UserID:      *userID,
		SearchQuery: params.SearchQuery,
		Filters:     sessionFilters(params.ContractTypes),
	}
	sessionID, err := repo.CreateSession(ctx, sess)
	if err != nil {
		log.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	log.Info("🚀 starting scraping run", "session", sessionID, "keywords", params.Keywords, "locations", params.Locations)
	if err := runner.Run(ctx, sessionID, params); err != nil {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sessionFilters(contractTypes []string) models.SessionFilters {
	if len(contractTypes) == 0 {
		return models.SessionFilters{}
	}
	jobType := contractTypes[0]
	return models.SessionFilters{JobType: &jobType}
}
