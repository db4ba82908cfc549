package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"RatioChart/internal/calculator"
	"RatioChart/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Pair struct {
		SymbolA string `yaml:"symbol_a"`
		SymbolB string `yaml:"symbol_b"`
		Order   string `yaml:"order"`
	} `yaml:"pair"`
	DataSource struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		RelayURL  string `yaml:"relay_url"`
	} `yaml:"data_source"`
	Limits struct {
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		BreakerFailures   uint32        `yaml:"breaker_failures"`
		BreakerTimeout    time.Duration `yaml:"breaker_timeout"`
	} `yaml:"limits"`
	Timezone string `yaml:"timezone"`
	HTTP     struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
		Range       string `yaml:"range"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	PrefsFile string `yaml:"prefs_file"`
	Proxy     string `yaml:"proxy"`
}

// Providers the collector can be built from.
const (
	ProviderYahoo  = "yahoo"
	ProviderREST   = "rest"
	ProviderAlpaca = "alpaca"
	ProviderMock   = "mock"
)

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	overrides := []struct {
		env string
		dst *string
	}{
		{"RATIO_SYMBOL_A", &cfg.Pair.SymbolA},
		{"RATIO_SYMBOL_B", &cfg.Pair.SymbolB},
		{"DATA_PROVIDER", &cfg.DataSource.Provider},
		{"DATA_BASE_URL", &cfg.DataSource.BaseURL},
		{"DATA_API_KEY", &cfg.DataSource.APIKey},
		{"DATA_API_SECRET", &cfg.DataSource.APISecret},
		{"APCA_API_KEY_ID", &cfg.DataSource.APIKey},
		{"APCA_API_SECRET_KEY", &cfg.DataSource.APISecret},
		{"HTTP_ADDR", &cfg.HTTP.Addr},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"CRON_REFRESH", &cfg.Schedule.RefreshCron},
		{"CRON_REPORT", &cfg.Schedule.ReportCron},
		{"SQLITE_PATH", &cfg.Database.SQLitePath},
		{"HTTPS_PROXY", &cfg.Proxy},
		{"RATIO_TZ", &cfg.Timezone},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Limits.RequestsPerSecond = rps
		}
	}

	// Defaults
	if cfg.Pair.SymbolA == "" {
		cfg.Pair.SymbolA = "TSLA"
	}
	if cfg.Pair.SymbolB == "" {
		cfg.Pair.SymbolB = "MSTR"
	}
	if cfg.Pair.Order == "" {
		cfg.Pair.Order = string(model.OrderAOverB)
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	if cfg.Limits.RequestsPerSecond == 0 {
		cfg.Limits.RequestsPerSecond = 2
	}
	if cfg.Limits.Burst == 0 {
		cfg.Limits.Burst = 4
	}
	if cfg.Limits.BreakerFailures == 0 {
		cfg.Limits.BreakerFailures = 5
	}
	if cfg.Limits.BreakerTimeout == 0 {
		cfg.Limits.BreakerTimeout = 30 * time.Second
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */15 * * * 1-5"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 10 16 * * 1-5"
	}
	if cfg.Schedule.Range == "" {
		cfg.Schedule.Range = calculator.Range7Days
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/ratiochart.db"
	}
	if cfg.PrefsFile == "" {
		cfg.PrefsFile = "data/prefs.json"
	}

	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	req := model.Request{SymbolA: c.Pair.SymbolA, SymbolB: c.Pair.SymbolB, Order: model.RatioOrder(c.Pair.Order)}
	if err := req.Normalize().Validate(); err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", c.DataSource.Provider)
		}
	case ProviderAlpaca:
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and api_secret are required for provider %q", c.DataSource.Provider)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Limits.RequestsPerSecond < 0 || c.Limits.Burst < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Schedule.Range {
	case calculator.RangeToday, calculator.Range7Days, calculator.Range1Month:
	default:
		return fmt.Errorf("schedule.range %q must be today, 7days or 1month", c.Schedule.Range)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
		return fmt.Errorf("schedule.report_cron: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Location resolves the day-key time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TelegramEnabled reports whether the bot should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
