package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fxsignal/internal/indicator"
	"fxsignal/internal/logger"
	"fxsignal/internal/markethours"
	"fxsignal/internal/model"
)

// DefaultPairs is the instrument universe scanned when PAIRS is unset.
// Order matters: the first eligible pair in this list wins a pass.
var DefaultPairs = []string{
	"EURUSD", "AUDCHF", "GBPCHF", "EURCAD", "AUDCAD",
	"USDCHF", "CADCHF", "AUDJPY", "CADJPY", "EURJPY",
	"USDJPY", "GBPUSD", "EURGBP", "GBPJPY", "GBPAUD",
}

// Config holds all application configuration.
//
// Layers, lowest first: built-in defaults, the YAML file named by
// CONFIG_FILE, then environment variables (a .env file is loaded into the
// environment if present).
type Config struct {
	// Telegram
	TelegramToken string `yaml:"telegram_token"`
	ChatID        string `yaml:"chat_id"`
	DryRun        bool   `yaml:"dry_run"` // log alerts instead of sending them

	// Universe and cadence
	Pairs        []string `yaml:"pairs"`
	StartHour    int      `yaml:"start_hour"`
	EndHour      int      `yaml:"end_hour"`
	Timezone     string   `yaml:"timezone"`
	SkipWeekends bool     `yaml:"skip_weekends"`
	CooldownMin  float64  `yaml:"cooldown_min"`
	TickSeconds  int      `yaml:"tick_seconds"`
	TopN         int      `yaml:"top_n"`

	// Market data
	SignalInterval   string  `yaml:"signal_interval"`
	SignalRange      string  `yaml:"signal_range"`
	StrengthInterval string  `yaml:"strength_interval"`
	StrengthRange    string  `yaml:"strength_range"`
	YahooBaseURL     string  `yaml:"yahoo_base_url"`
	FetchRPS         float64 `yaml:"fetch_rps"`

	// Indicator periods and volatility floor
	Indicators indicator.Params `yaml:"indicators"`

	// Extra delivery backends
	WebhookURL    string `yaml:"webhook_url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisChannel  string `yaml:"redis_channel"`

	// HTTP and logging
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Pairs:            append([]string(nil), DefaultPairs...),
		StartHour:        markethours.DefaultStartHour,
		EndHour:          markethours.DefaultEndHour,
		Timezone:         "UTC",
		CooldownMin:      5,
		TickSeconds:      60,
		TopN:             3,
		SignalInterval:   "1m",
		SignalRange:      "1d",
		StrengthInterval: "15m",
		StrengthRange:    "1d",
		FetchRPS:         4,
		Indicators:       indicator.DefaultParams(),
		RedisChannel:     "fxsignal:alerts",
		Port:             "10000",
		LogLevel:         "info",
	}
}

// Load reads configuration from defaults, CONFIG_FILE and the environment,
// then validates it.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.TelegramToken = getEnv("TELEGRAM_TOKEN", c.TelegramToken)
	c.ChatID = getEnv("CHAT_ID", c.ChatID)
	c.DryRun = getEnvBool("DRY_RUN", c.DryRun)

	if v := os.Getenv("PAIRS"); v != "" {
		c.Pairs = splitAndTrim(v)
	}
	c.StartHour = getEnvInt("START_HOUR", c.StartHour)
	c.EndHour = getEnvInt("END_HOUR", c.EndHour)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.SkipWeekends = getEnvBool("SKIP_WEEKENDS", c.SkipWeekends)
	c.CooldownMin = getEnvFloat("COOLDOWN_MIN", c.CooldownMin)
	c.TickSeconds = getEnvInt("TICK_SECONDS", c.TickSeconds)
	c.TopN = getEnvInt("TOP_N", c.TopN)

	c.SignalInterval = getEnv("SIGNAL_INTERVAL", c.SignalInterval)
	c.SignalRange = getEnv("SIGNAL_RANGE", c.SignalRange)
	c.StrengthInterval = getEnv("STRENGTH_INTERVAL", c.StrengthInterval)
	c.StrengthRange = getEnv("STRENGTH_RANGE", c.StrengthRange)
	c.YahooBaseURL = getEnv("YAHOO_BASE_URL", c.YahooBaseURL)
	c.FetchRPS = getEnvFloat("FETCH_RPS", c.FetchRPS)
	c.Indicators.MinATR = getEnvFloat("MIN_ATR", c.Indicators.MinATR)

	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisChannel = getEnv("REDIS_CHANNEL", c.RedisChannel)

	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if !c.DryRun {
		if c.TelegramToken == "" {
			errs = append(errs, errors.New("TELEGRAM_TOKEN is required unless DRY_RUN=true"))
		}
		if c.ChatID == "" {
			errs = append(errs, errors.New("CHAT_ID is required unless DRY_RUN=true"))
		}
	}
	if _, err := c.Universe(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Window(); err != nil {
		errs = append(errs, err)
	}
	if c.CooldownMin < 0 {
		errs = append(errs, fmt.Errorf("COOLDOWN_MIN must not be negative, got %g", c.CooldownMin))
	}
	if c.TickSeconds <= 0 {
		errs = append(errs, fmt.Errorf("TICK_SECONDS must be positive, got %d", c.TickSeconds))
	}
	if c.TopN <= 0 {
		errs = append(errs, fmt.Errorf("TOP_N must be positive, got %d", c.TopN))
	}
	if err := c.Indicators.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Universe parses Pairs into instruments, keeping their order.
func (c *Config) Universe() ([]model.Instrument, error) {
	return model.ParseUniverse(strings.Join(c.Pairs, ","))
}

// Window returns the trading-hour window.
func (c *Config) Window() (markethours.Window, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return markethours.Window{}, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	w := markethours.Window{
		StartHour:    c.StartHour,
		EndHour:      c.EndHour,
		Location:     loc,
		SkipWeekends: c.SkipWeekends,
	}
	return w, w.Validate()
}

// Cooldown is the minimum time between two attempted signals.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMin * float64(time.Minute))
}

// TickInterval is the cadence loop period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
