// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Feed          FeedConfig          `yaml:"feed"`
	Detector      DetectorConfig      `yaml:"detector"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// FeedConfig defines the listing feed client settings. Brands is the list of
// brands each scan cycle pulls snapshots for.
type FeedConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Brands    []string        `yaml:"brands"`
	PageSize  int             `yaml:"page_size"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines feed API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// DetectorConfig defines deal forwarding settings. MinDropPercent is the
// caller-side forwarding threshold applied to detector output before
// notification; the detector's own eligibility constants are fixed.
type DetectorConfig struct {
	MinDropPercent float64 `yaml:"min_drop_percent"`
	SoldWindowDays int     `yaml:"sold_window_days"`
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	ScanInterval   time.Duration `yaml:"scan_interval"`
	DetectInterval time.Duration `yaml:"detect_interval"`
	StaggerOffset  time.Duration `yaml:"stagger_offset"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultBrands is the brand list used when the config omits feed.brands.
var DefaultBrands = []string{"Seiko", "Omega", "Rolex", "Tudor", "Grand Seiko"}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyFeedDefaults(&cfg.Feed)
	applyDetectorDefaults(&cfg.Detector)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyFeedDefaults(f *FeedConfig) {
	if len(f.Brands) == 0 {
		f.Brands = append([]string(nil), DefaultBrands...)
	}
	if f.PageSize == 0 {
		f.PageSize = 100
	}
	if f.Timeout == 0 {
		f.Timeout = 20 * time.Second
	}
	if f.RateLimit.PerSecond == 0 {
		f.RateLimit.PerSecond = 1.0
	}
	if f.RateLimit.Burst == 0 {
		f.RateLimit.Burst = 5
	}
	if f.RateLimit.DailyLimit == 0 {
		f.RateLimit.DailyLimit = 5000
	}
}

func applyDetectorDefaults(d *DetectorConfig) {
	if d.MinDropPercent == 0 {
		d.MinDropPercent = 10
	}
	if d.SoldWindowDays == 0 {
		d.SoldWindowDays = 30
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.ScanInterval == 0 {
		s.ScanInterval = 15 * time.Minute
	}
	if s.DetectInterval == 0 {
		s.DetectInterval = time.Hour
	}
	if s.StaggerOffset == 0 {
		s.StaggerOffset = time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Detector.MinDropPercent < 0 {
		errs = append(errs, fmt.Errorf("detector.min_drop_percent must not be negative"))
	}
	if cfg.Detector.SoldWindowDays < 1 {
		errs = append(errs, fmt.Errorf("detector.sold_window_days must be at least 1"))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}
	if cfg.Notifications.Telegram.Enabled {
		if cfg.Notifications.Telegram.BotToken == "" {
			errs = append(errs, fmt.Errorf("notifications.telegram.bot_token is required when telegram is enabled"))
		}
		if cfg.Notifications.Telegram.ChatID == "" {
			errs = append(errs, fmt.Errorf("notifications.telegram.chat_id is required when telegram is enabled"))
		}
	}

	return errors.Join(errs...)
}
