package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from an optional
// YAML file and are overridden by environment variables (and .env).
type Config struct {
	SearchURLs   []string `yaml:"search_urls"`
	PollInterval int      `yaml:"poll_interval_minutes"`
	RunOnce      bool     `yaml:"run_once"`
	NotifyAll    bool     `yaml:"notify_all"`

	MaxConcurrency int    `yaml:"max_concurrency"`
	RateLimitMs    int    `yaml:"rate_limit_ms"`
	MaxRetries     int    `yaml:"max_retries"`
	FetchTimeout   int    `yaml:"fetch_timeout_seconds"`
	ChromeBin      string `yaml:"chrome_bin"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	DatabaseURL   string `yaml:"database_url"`
	CachePath     string `yaml:"cache_path"`
	CSVOutputPath string `yaml:"csv_output_path"`

	LogLevel string `yaml:"log_level"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (default
// config.yaml) if present, then environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := Defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		PollInterval:   30,
		MaxConcurrency: 3,
		RateLimitMs:    2000,
		MaxRetries:     3,
		FetchTimeout:   60,
		CachePath:      "./.cache",
		CSVOutputPath:  "./output/evaluations.csv",
		LogLevel:       "info",
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SEARCH_URLS"); v != "" {
		c.SearchURLs = splitList(v)
	}
	c.PollInterval = getEnvInt("POLL_INTERVAL_MINUTES", c.PollInterval)
	c.RunOnce = getEnvBool("RUN_ONCE", c.RunOnce)
	c.NotifyAll = getEnvBool("NOTIFY_ALL", c.NotifyAll)

	c.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", c.MaxConcurrency)
	c.RateLimitMs = getEnvInt("RATE_LIMIT_MS", c.RateLimitMs)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.FetchTimeout = getEnvInt("FETCH_TIMEOUT_SECONDS", c.FetchTimeout)
	c.ChromeBin = getEnv("CHROME_BIN", c.ChromeBin)

	c.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramToken)
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.CachePath = getEnv("CACHE_PATH", c.CachePath)
	c.CSVOutputPath = getEnv("CSV_OUTPUT_PATH", c.CSVOutputPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate reports every setting that would stop the watcher from running.
func (c *Config) Validate() error {
	var errs []error
	if len(c.SearchURLs) == 0 {
		errs = append(errs, errors.New("no search URLs configured (SEARCH_URLS)"))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency))
	}
	if c.PollInterval < 1 && !c.RunOnce {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL_MINUTES must be positive, got %d", c.PollInterval))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Interval is the wait between two watch cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PollInterval) * time.Minute
}

// Timeout is the per-page fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
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
