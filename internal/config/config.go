package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// ErrValidation возвращается при некорректной конфигурации.
var ErrValidation = errors.New("validation error")

// Переменные окружения
const (
	EnvToken       = "POLLBOT_TOKEN"
	EnvDatabaseDSN = "POLLBOT_DATABASE_DSN"
)

// Config содержит настройки запуска бота.
type Config struct {
	Token           string
	APIURL          string
	PollTimeout     int
	Limit           int
	MetricsAddr     string
	DatabaseDSN     string
	ErrorBackoff    bool
	IsolateHandlers bool
	LogLevel        string
	Echo            bool
}

// Load разбирает аргументы командной строки. Токен и DSN можно передать
// через переменные окружения, флаги имеют приоритет.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("pollbot", pflag.ContinueOnError)
	fs.StringVar(&cfg.Token, "token", "", "token of telegram bot (env "+EnvToken+")")
	fs.StringVar(&cfg.APIURL, "api-url", "https://api.telegram.org", "bot api base url")
	fs.IntVar(&cfg.PollTimeout, "poll-timeout", 30, "long polling timeout in seconds")
	fs.IntVar(&cfg.Limit, "limit", 0, "max updates per request (1-100, 0 = server default)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "address for prometheus /metrics, empty to disable")
	fs.StringVar(&cfg.DatabaseDSN, "database-dsn", "", "postgres dsn for cursor storage (env "+EnvDatabaseDSN+")")
	fs.BoolVar(&cfg.ErrorBackoff, "error-backoff", true, "exponential backoff between failed getUpdates calls")
	fs.BoolVar(&cfg.IsolateHandlers, "isolate-handlers", false, "log handler errors instead of stopping")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Echo, "echo", true, "reply to text messages with the same text")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Token == "" {
		cfg.Token = getenv(EnvToken)
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = getenv(EnvDatabaseDSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("%w, token is required", ErrValidation)
	}

	if c.PollTimeout < 0 {
		return fmt.Errorf("%w, poll timeout must not be negative", ErrValidation)
	}

	if c.Limit < 0 || c.Limit > 100 {
		return fmt.Errorf("%w, limit must be between 0 and 100", ErrValidation)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel возвращает уровень логирования.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w, unknown log level %q", ErrValidation, c.LogLevel)
	}

	return level, nil
}
