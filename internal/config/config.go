// Package config defines the top-level configuration for the goalfeed engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by GOALFEED_* environment
// variables.
type Config struct {
	Feed       FeedConfig       `toml:"feed"`
	Engine     EngineConfig     `toml:"engine"`
	Settlement SettlementConfig `toml:"settlement"`
	Database   DatabaseConfig   `toml:"database"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// FeedConfig holds the live data vendor connection parameters.
type FeedConfig struct {
	BaseURL    string   `toml:"base_url"`
	APIKey     string   `toml:"api_key"`
	Timeout    duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// EngineConfig holds the scan cycle and emission parameters.
type EngineConfig struct {
	ScanInterval    duration `toml:"scan_interval"`
	InterEventDelay duration `toml:"inter_event_delay"`
	PostEmitDelay   duration `toml:"post_emit_delay"`
	Competitions    []string `toml:"competitions"`
	MinMinute       int      `toml:"min_minute"`
	MaxMinute       int      `toml:"max_minute"`
	MaxGoalDiff     int      `toml:"max_goal_diff"`
	AutoStart       bool     `toml:"auto_start"`
	FilterEnabled   bool     `toml:"filter_enabled"`
	BusChannel      string   `toml:"bus_channel"`
	BusStream       string   `toml:"bus_stream"`
}

// SettlementConfig holds the settlement loop parameters.
type SettlementConfig struct {
	Interval         duration `toml:"interval"`
	Delay            duration `toml:"delay"`
	InterSignalDelay duration `toml:"inter_signal_delay"`
}

// DatabaseConfig holds PostgreSQL connection parameters. An empty DSN with an
// empty Host selects the in-memory store.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a PostgreSQL target is configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != "" || strings.TrimSpace(d.Host) != ""
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// signal bus.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Enabled reports whether a Redis target is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration for TOML string parsing ("3m", "90s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

var validModes = map[string]bool{
	"engine": true,
	"settle": true,
	"serve":  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns the built-in configuration baseline.
func Defaults() Config {
	return Config{
		Feed: FeedConfig{
			Timeout:    duration{15 * time.Second},
			MaxRetries: 2,
		},
		Engine: EngineConfig{
			ScanInterval:    duration{3 * time.Minute},
			InterEventDelay: duration{2 * time.Second},
			PostEmitDelay:   duration{5 * time.Second},
			MinMinute:       10,
			MaxMinute:       85,
			MaxGoalDiff:     3,
			AutoStart:       true,
			FilterEnabled:   true,
			BusChannel:      "signals",
			BusStream:       "stream:signals",
		},
		Settlement: SettlementConfig{
			Interval:         duration{10 * time.Minute},
			Delay:            duration{time.Hour},
			InterSignalDelay: duration{time.Second},
		},
		Database: DatabaseConfig{
			Port:          5432,
			Database:      "goalfeed",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Notify: NotifyConfig{
			Events: []string{"signal", "settlement"},
		},
		Mode:     "engine",
		LogLevel: "info",
	}
}

// Validate checks cross-field constraints and reports every violation at
// once.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: engine, settle, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if strings.TrimSpace(c.Feed.BaseURL) == "" {
		errs = append(errs, "feed: base_url must not be empty")
	}
	if c.Feed.MaxRetries < 0 {
		errs = append(errs, "feed: max_retries must not be negative")
	}

	if c.Engine.ScanInterval.Duration <= 0 {
		errs = append(errs, "engine: scan_interval must be positive")
	}
	if c.Engine.MinMinute < 0 || c.Engine.MaxMinute <= 0 || c.Engine.MinMinute >= c.Engine.MaxMinute {
		errs = append(errs, fmt.Sprintf("engine: invalid minute window [%d, %d]", c.Engine.MinMinute, c.Engine.MaxMinute))
	}
	if c.Engine.MaxGoalDiff < 0 {
		errs = append(errs, "engine: max_goal_diff must not be negative")
	}

	if c.Settlement.Interval.Duration <= 0 {
		errs = append(errs, "settlement: interval must be positive")
	}
	if c.Settlement.Delay.Duration < 0 {
		errs = append(errs, "settlement: delay must not be negative")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
