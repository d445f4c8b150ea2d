package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SignalSentinel/internal/strategy"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
universe:
  symbols: [INFY, TCS]
engine:
  trigger_threshold: 3
  level_policy: atr
  chart_window: 30
  rsi_period: 10
redis:
  addr: localhost:6379
  alert_ttl: 48h
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Engine.TriggerThreshold != 3 || cfg.Engine.LevelPolicy != strategy.LevelPolicyATR {
		t.Errorf("engine overrides not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.Patterns.ChartWindow != 30 || cfg.Engine.Indicators.RSIPeriod != 10 {
		t.Errorf("inline engine fields not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.RSIOversold != 30 || cfg.Engine.Patterns.BreakoutFactor != 1.01 {
		t.Error("unset engine fields should keep their defaults")
	}
	if cfg.Redis.AlertTTL != 48*time.Hour || cfg.Redis.BarTTL != 6*time.Hour {
		t.Errorf("redis ttls = %v / %v", cfg.Redis.AlertTTL, cfg.Redis.BarTTL)
	}
	if cfg.DataSource.Provider != ProviderYahoo || cfg.Scan.Concurrency != 4 {
		t.Error("defaults missing")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "TELEGRAM_BOT_TOKEN=from-dotenv\nTELEGRAM_CHAT_ID=42\n")
	t.Setenv("UNIVERSE_SYMBOLS", "infy, tcs,,")
	t.Setenv("SCAN_CONCURRENCY", "8")
	t.Setenv("DB_DRIVER", "none")
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("TELEGRAM_CHAT_ID")
	})

	cfg, err := Load(filepath.Join(dir, "missing.yaml"), envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "from-dotenv" || cfg.Telegram.ChatID != "42" {
		t.Errorf("dotenv values not applied: %+v", cfg.Telegram)
	}
	if strings.Join(cfg.Universe.Symbols, ",") != "infy,tcs" {
		t.Errorf("symbols = %v", cfg.Universe.Symbols)
	}
	if cfg.Scan.Concurrency != 8 || cfg.Database.Driver != DriverNone {
		t.Errorf("env overrides not applied: %d %s", cfg.Scan.Concurrency, cfg.Database.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml"), ""); err == nil {
		t.Error("expected an error for a non-numeric REDIS_DB")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Universe.Symbols = []string{"INFY"}
		return cfg
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("defaults plus a symbol should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no universe", func(c *Config) { c.Universe.Symbols = nil }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = ProviderREST }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"too few days", func(c *Config) { c.DataSource.Days = 50 }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"bad engine", func(c *Config) { c.Engine.TriggerThreshold = 0 }},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
