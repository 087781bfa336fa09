// Package config loads and validates the idxwatch service configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultListingURL = "https://www.idx.co.id/id/perusahaan-tercatat/pengumuman-emiten/"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultScrapeInterval  = 10 * time.Minute
	defaultFetchTimeout    = 15 * time.Second
	defaultServerPort      = 8060
	defaultServerTimeout   = 30 * time.Second
	defaultDatabasePath    = "idx_disclosures.db"
	defaultRedisAddress    = "localhost:6379"
	defaultNotifyWorkers   = 8
	defaultLatestLimit     = 5
	defaultMinColumns      = 3
	defaultDateColumn      = 0
	defaultCodeColumn      = 1
	defaultTitleColumn     = 2
	defaultRowContainer    = "table"
	defaultRowSelector     = "tr"
	defaultDocLinkSelector = "a[href]"
)

type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	Telegram TelegramConfig `yaml:"telegram"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Database DatabaseConfig `yaml:"database"`
	Notifier NotifierConfig `yaml:"notifier"`
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
}

type TelegramConfig struct {
	Token string `env:"TELEGRAM_BOT_TOKEN" yaml:"token"`
	// LatestLimit is how many stored disclosures /latest returns.
	LatestLimit int `yaml:"latest_limit"`
}

// ScraperConfig describes where and how to scrape the disclosure listing.
type ScraperConfig struct {
	ListingURL   string        `env:"IDX_LISTING_URL"  yaml:"listing_url"`
	Interval     time.Duration `env:"SCRAPE_INTERVAL"  yaml:"interval"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT"    yaml:"fetch_timeout"`
	UserAgent    string        `yaml:"user_agent"`
	Schema       SchemaConfig  `yaml:"schema"`
}

// SchemaConfig is the field-extraction schema for the listing page. Column
// indexes are zero-based positions within a row.
type SchemaConfig struct {
	RowContainer string `yaml:"row_container"`
	Row          string `yaml:"row"`
	DateColumn   int    `yaml:"date_column"`
	CodeColumn   int    `yaml:"code_column"`
	TitleColumn  int    `yaml:"title_column"`
	MinColumns   int    `yaml:"min_columns"`
	DocLink      string `yaml:"doc_link"`
}

type DatabaseConfig struct {
	Path string `env:"DB_PATH" yaml:"path"`
}

type NotifierConfig struct {
	// Workers bounds concurrent message dispatches per disclosure.
	Workers int `env:"NOTIFY_WORKERS" yaml:"workers"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RedisConfig holds Redis connection configuration for event publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
}

// Load reads the YAML config (if present), applies defaults, then applies
// .env / environment overrides. Environment always wins.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	if err := readYAML(path, cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required (TELEGRAM_BOT_TOKEN)")
	}
	if c.Scraper.ListingURL == "" {
		return errors.New("scraper.listing_url is required")
	}
	if c.Scraper.Interval <= 0 {
		return errors.New("scraper.interval must be positive")
	}
	if c.Scraper.FetchTimeout <= 0 {
		return errors.New("scraper.fetch_timeout must be positive")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Notifier.Workers <= 0 {
		return errors.New("notifier.workers must be positive")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Telegram.LatestLimit == 0 {
		cfg.Telegram.LatestLimit = defaultLatestLimit
	}
	if cfg.Scraper.ListingURL == "" {
		cfg.Scraper.ListingURL = defaultListingURL
	}
	if cfg.Scraper.Interval == 0 {
		cfg.Scraper.Interval = defaultScrapeInterval
	}
	if cfg.Scraper.FetchTimeout == 0 {
		cfg.Scraper.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = defaultUserAgent
	}
	if cfg.Scraper.Schema.RowContainer == "" {
		cfg.Scraper.Schema.RowContainer = defaultRowContainer
	}
	if cfg.Scraper.Schema.Row == "" {
		cfg.Scraper.Schema.Row = defaultRowSelector
	}
	if cfg.Scraper.Schema.DocLink == "" {
		cfg.Scraper.Schema.DocLink = defaultDocLinkSelector
	}
	if cfg.Scraper.Schema.MinColumns == 0 {
		cfg.Scraper.Schema.MinColumns = defaultMinColumns
	}
	if cfg.Scraper.Schema.DateColumn == 0 && cfg.Scraper.Schema.CodeColumn == 0 && cfg.Scraper.Schema.TitleColumn == 0 {
		cfg.Scraper.Schema.DateColumn = defaultDateColumn
		cfg.Scraper.Schema.CodeColumn = defaultCodeColumn
		cfg.Scraper.Schema.TitleColumn = defaultTitleColumn
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath
	}
	if cfg.Notifier.Workers == 0 {
		cfg.Notifier.Workers = defaultNotifyWorkers
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	// Redis.Enabled defaults to false (feature flag)
}
