package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies GOALFEED_* environment variable overrides, and
// returns the final Config. The caller should invoke Config.Validate()
// afterwards.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env if present; silently ignore when missing.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known GOALFEED_* environment variables and
// overwrites the corresponding fields when a variable is set. Operators can
// inject secrets at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Feed.BaseURL, "GOALFEED_FEED_BASE_URL")
	setStr(&cfg.Feed.APIKey, "GOALFEED_FEED_API_KEY")
	setDuration(&cfg.Feed.Timeout, "GOALFEED_FEED_TIMEOUT")
	setInt(&cfg.Feed.MaxRetries, "GOALFEED_FEED_MAX_RETRIES")

	setDuration(&cfg.Engine.ScanInterval, "GOALFEED_ENGINE_SCAN_INTERVAL")
	setDuration(&cfg.Engine.InterEventDelay, "GOALFEED_ENGINE_INTER_EVENT_DELAY")
	setDuration(&cfg.Engine.PostEmitDelay, "GOALFEED_ENGINE_POST_EMIT_DELAY")
	setStringSlice(&cfg.Engine.Competitions, "GOALFEED_ENGINE_COMPETITIONS")
	setInt(&cfg.Engine.MinMinute, "GOALFEED_ENGINE_MIN_MINUTE")
	setInt(&cfg.Engine.MaxMinute, "GOALFEED_ENGINE_MAX_MINUTE")
	setInt(&cfg.Engine.MaxGoalDiff, "GOALFEED_ENGINE_MAX_GOAL_DIFF")
	setBool(&cfg.Engine.AutoStart, "GOALFEED_ENGINE_AUTO_START")
	setBool(&cfg.Engine.FilterEnabled, "GOALFEED_ENGINE_FILTER_ENABLED")
	setStr(&cfg.Engine.BusChannel, "GOALFEED_ENGINE_BUS_CHANNEL")
	setStr(&cfg.Engine.BusStream, "GOALFEED_ENGINE_BUS_STREAM")

	setDuration(&cfg.Settlement.Interval, "GOALFEED_SETTLEMENT_INTERVAL")
	setDuration(&cfg.Settlement.Delay, "GOALFEED_SETTLEMENT_DELAY")
	setDuration(&cfg.Settlement.InterSignalDelay, "GOALFEED_SETTLEMENT_INTER_SIGNAL_DELAY")

	setStr(&cfg.Database.DSN, "GOALFEED_DATABASE_DSN")
	setStr(&cfg.Database.Host, "GOALFEED_DATABASE_HOST")
	setInt(&cfg.Database.Port, "GOALFEED_DATABASE_PORT")
	setStr(&cfg.Database.Database, "GOALFEED_DATABASE_NAME")
	setStr(&cfg.Database.User, "GOALFEED_DATABASE_USER")
	setStr(&cfg.Database.Password, "GOALFEED_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "GOALFEED_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "GOALFEED_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "GOALFEED_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "GOALFEED_DATABASE_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "GOALFEED_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "GOALFEED_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "GOALFEED_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "GOALFEED_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "GOALFEED_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "GOALFEED_REDIS_TLS_ENABLED")

	setBool(&cfg.Server.Enabled, "GOALFEED_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "GOALFEED_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "GOALFEED_SERVER_CORS_ORIGINS")

	setStr(&cfg.Notify.TelegramToken, "GOALFEED_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "GOALFEED_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "GOALFEED_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "GOALFEED_NOTIFY_EVENTS")

	setStr(&cfg.Mode, "GOALFEED_MODE")
	setStr(&cfg.LogLevel, "GOALFEED_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
