package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/strategy"
)

// Data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderCSV   = "csv"
	ProviderMock  = "mock"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id"`
		Polling    bool   `yaml:"polling"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"telegram"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
	DataSource struct {
		Provider string `yaml:"provider"`
		// Days of history requested per instrument.
		Days int `yaml:"days"`
		// Suffix is appended to tickers for the Yahoo provider, e.g. ".NS".
		Suffix     string `yaml:"suffix"`
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		DataPath   string `yaml:"data_path"`
		CSVDir     string `yaml:"csv_dir"`
		HeaderRows int    `yaml:"header_rows"`
	} `yaml:"data_source"`
	Universe struct {
		Files     []string `yaml:"files"`
		Symbols   []string `yaml:"symbols"`
		AlphaOnly bool     `yaml:"alpha_only"`
	} `yaml:"universe"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
		Timezone string `yaml:"timezone"`
	} `yaml:"schedule"`
	Scan struct {
		Concurrency       int     `yaml:"concurrency"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		SendSummary       bool    `yaml:"send_summary"`
		Currency          string  `yaml:"currency"`
	} `yaml:"scan"`
	Engine   strategy.Config `yaml:"engine"`
	Database struct {
		Driver      string `yaml:"driver"`
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		AlertTTL time.Duration `yaml:"alert_ttl"`
		BarTTL   time.Duration `yaml:"bar_ttl"`
	} `yaml:"redis"`
	HTTP struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used for every field the file and the
// environment leave unset.
func Default() *Config {
	cfg := &Config{}
	cfg.Telegram.Polling = true
	cfg.Telegram.MaxRetries = 3
	cfg.DataSource.Provider = ProviderYahoo
	cfg.DataSource.Days = 365
	cfg.DataSource.Suffix = ".NS"
	cfg.DataSource.CSVDir = "data/bars"
	cfg.DataSource.HeaderRows = 1
	cfg.Universe.AlphaOnly = true
	cfg.Schedule.ScanCron = "0 30 16 * * 1-5"
	cfg.Schedule.Timezone = "Asia/Kolkata"
	cfg.Scan.Concurrency = 4
	cfg.Scan.RequestsPerSecond = 2
	cfg.Scan.SendSummary = true
	cfg.Scan.Currency = "₹"
	cfg.Engine = strategy.DefaultConfig()
	cfg.Database.Driver = DriverSQLite
	cfg.Database.SQLitePath = "data/signal_sentinel.db"
	cfg.Redis.Prefix = "signalsentinel:"
	cfg.Redis.AlertTTL = 7 * 24 * time.Hour
	cfg.Redis.BarTTL = 6 * time.Hour
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads an optional .env file, the YAML file at path, then applies
// environment variable overrides. Missing files are not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("WEBHOOK_URL", &c.Webhook.URL)
	str("DATA_PROVIDER", &c.DataSource.Provider)
	str("DATA_BASE_URL", &c.DataSource.BaseURL)
	str("DATA_API_KEY", &c.DataSource.APIKey)
	str("DATA_CSV_DIR", &c.DataSource.CSVDir)
	str("TICKER_SUFFIX", &c.DataSource.Suffix)
	list("UNIVERSE_FILES", &c.Universe.Files)
	list("UNIVERSE_SYMBOLS", &c.Universe.Symbols)
	str("CRON_SCAN", &c.Schedule.ScanCron)
	str("TZ_SCHEDULE", &c.Schedule.Timezone)
	str("DB_DRIVER", &c.Database.Driver)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("POSTGRES_DSN", &c.Database.PostgresDSN)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("HTTPS_PROXY", &c.Proxy)

	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_CONCURRENCY: %w", err)
		}
		c.Scan.Concurrency = n
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v := os.Getenv("TRIGGER_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRIGGER_THRESHOLD: %w", err)
		}
		c.Engine.TriggerThreshold = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location resolves the schedule time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Schedule.Timezone)
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case ProviderCSV:
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.DataSource.Days < c.Engine.MinBars {
		return fmt.Errorf("data_source.days (%d) must cover engine.min_bars (%d)", c.DataSource.Days, c.Engine.MinBars)
	}
	if len(c.Universe.Files) == 0 && len(c.Universe.Symbols) == 0 {
		return fmt.Errorf("universe.files or universe.symbols is required")
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("scan.concurrency must be at least 1")
	}
	if c.Scan.RequestsPerSecond < 0 {
		return fmt.Errorf("scan.requests_per_second must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for the postgres driver")
		}
	case DriverNone, "":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
