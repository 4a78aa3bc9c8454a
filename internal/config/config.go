// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//LinkedIn credentials come from env only, never from YAML
	LinkedInEmail    string `yaml:"-"`
	LinkedInPassword string `yaml:"-"`

	Mongo    MongoConfig    `yaml:"mongo"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// ScraperConfig holds the tunables of one pipeline run. The settle and
// politeness delays default to the values observed to work against LinkedIn;
// tests zero them out.
type ScraperConfig struct {
	MaxPages      int           `yaml:"max_pages"`
	DetailCap     int           `yaml:"detail_cap"`
	PageDelay     time.Duration `yaml:"page_delay"`
	ListingSettle time.Duration `yaml:"listing_settle"`
	DetailSettle  time.Duration `yaml:"detail_settle"`
	LoginTimeout  time.Duration `yaml:"login_timeout"`
	CachePath     string        `yaml:"cache_path"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	Token  string `yaml:"telegram_token"`
	ChatID int64  `yaml:"telegram_chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load() (*Config, error) {
	return LoadFile("configs/config.yaml")
}

func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	//Override with env vars
	cfg.LinkedInEmail = os.Getenv("LINKEDIN_EMAIL")
	cfg.LinkedInPassword = os.Getenv("LINKEDIN_PASSWORD")
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "job_matcher"
	}
	if c.Scraper.MaxPages <= 0 {
		c.Scraper.MaxPages = 3
	}
	if c.Scraper.DetailCap <= 0 {
		c.Scraper.DetailCap = 10
	}
	if c.Scraper.PageDelay <= 0 {
		c.Scraper.PageDelay = time.Second
	}
	if c.Scraper.ListingSettle <= 0 {
		c.Scraper.ListingSettle = 2 * time.Second
	}
	if c.Scraper.DetailSettle <= 0 {
		c.Scraper.DetailSettle = time.Second
	}
	if c.Scraper.LoginTimeout <= 0 {
		c.Scraper.LoginTimeout = 10 * time.Second
	}
	if c.Scraper.CachePath == "" {
		c.Scraper.CachePath = ".cache"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ValidateCredentials fails fast before a scraping run when the LinkedIn
// login cannot possibly succeed.
func (c *Config) ValidateCredentials() error {
	if c.LinkedInEmail == "" || c.LinkedInPassword == "" {
		return fmt.Errorf("LINKEDIN_EMAIL and LINKEDIN_PASSWORD must be set")
	}
	return nil
}
