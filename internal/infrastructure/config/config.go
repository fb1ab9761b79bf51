package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MaxTocPages is the hard ceiling on toc pages crawled per request.
const MaxTocPages = 20

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Sources   SourcesConfig
	Fetch     FetchConfig
	Search    SearchConfig
	Crawl     CrawlConfig
	Content   ContentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3001"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig holds the source database location.
type StorageConfig struct {
	Path string `envconfig:"DB_PATH" default:"database.sqlite"`
}

// SourcesConfig controls startup seeding.
type SourcesConfig struct {
	Dir  string `envconfig:"SOURCES_DIR" default:""`
	Glob string `envconfig:"SOURCES_GLOB" default:"**/*.{json,yaml,yml,toml,gz}"`
}

// FetchConfig holds outbound fetch settings.
type FetchConfig struct {
	Timeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	MaxRedirects int           `envconfig:"FETCH_MAX_REDIRECTS" default:"5"`
	Retries      int           `envconfig:"FETCH_RETRIES" default:"0"`
	UserAgent    string        `envconfig:"FETCH_USER_AGENT" default:""`
	RPS          float64       `envconfig:"FETCH_RPS" default:"0"`
}

// SearchConfig holds fan-out search settings.
type SearchConfig struct {
	Concurrency int `envconfig:"SEARCH_CONCURRENCY" default:"8"`
}

// CrawlConfig holds toc crawl settings.
type CrawlConfig struct {
	TocMaxPages int `envconfig:"TOC_MAX_PAGES" default:"20"`
}

// ContentConfig holds chapter content settings.
type ContentConfig struct {
	Sanitize bool `envconfig:"CONTENT_SANITIZE" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.clamp()
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3001",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			Path: "database.sqlite",
		},
		Sources: SourcesConfig{
			Glob: "**/*.{json,yaml,yml,toml,gz}",
		},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			MaxRedirects: 5,
		},
		Search: SearchConfig{
			Concurrency: 8,
		},
		Crawl: CrawlConfig{
			TocMaxPages: MaxTocPages,
		},
	}
}

func (c *Config) clamp() {
	if c.Crawl.TocMaxPages <= 0 || c.Crawl.TocMaxPages > MaxTocPages {
		c.Crawl.TocMaxPages = MaxTocPages
	}
	if c.Search.Concurrency <= 0 {
		c.Search.Concurrency = 1
	}
}
