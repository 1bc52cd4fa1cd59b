package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goalfeed/goalfeed/internal/cache/redis"
	"github.com/goalfeed/goalfeed/internal/config"
	"github.com/goalfeed/goalfeed/internal/corroborate"
	"github.com/goalfeed/goalfeed/internal/domain"
	"github.com/goalfeed/goalfeed/internal/engine"
	"github.com/goalfeed/goalfeed/internal/feed"
	"github.com/goalfeed/goalfeed/internal/notify"
	"github.com/goalfeed/goalfeed/internal/server"
	"github.com/goalfeed/goalfeed/internal/server/handler"
	"github.com/goalfeed/goalfeed/internal/server/ws"
	"github.com/goalfeed/goalfeed/internal/settlement"
	"github.com/goalfeed/goalfeed/internal/snapshot"
	"github.com/goalfeed/goalfeed/internal/store/memory"
	"github.com/goalfeed/goalfeed/internal/store/postgres"
)

// Dependencies bundles everything the run modes operate on. It is constructed
// by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Feed     domain.FeedSource
	Store    domain.SignalStore
	Bus      domain.SignalBus
	Notifier *notify.Notifier
	Engine   *engine.Engine
	Settler  *settlement.Settler
	Hub      *ws.Hub
	Server   *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// Signal store: PostgreSQL when configured, in-memory otherwise. The
	// in-memory store loses state on restart and is meant for development.
	if cfg.Database.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Database.DSN,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.PoolMaxConns,
			MinConns: cfg.Database.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Database.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Store = postgres.NewSignalStore(pgClient.Pool())
	} else {
		logger.Warn("no database configured, using in-memory signal store")
		deps.Store = memory.NewSignalStore()
	}

	// Redis signal bus, optional.
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Bus = redis.NewSignalBus(redisClient)
	}

	// Feed client.
	deps.Feed = feed.NewClient(feed.Config{
		BaseURL:    cfg.Feed.BaseURL,
		APIKey:     cfg.Feed.APIKey,
		Timeout:    cfg.Feed.Timeout.Duration,
		MaxRetries: cfg.Feed.MaxRetries,
	}, logger)

	// Notifications.
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.New(senders, cfg.Notify.Events, logger)

	// Engine.
	reviewer := corroborate.NewReviewer(deps.Feed, logger)
	deps.Engine = engine.New(
		deps.Feed,
		deps.Store,
		snapshot.NewStore(),
		reviewer,
		deps.Notifier,
		deps.Bus,
		engine.Config{
			ScanInterval:    cfg.Engine.ScanInterval.Duration,
			InterEventDelay: cfg.Engine.InterEventDelay.Duration,
			PostEmitDelay:   cfg.Engine.PostEmitDelay.Duration,
			Competitions:    cfg.Engine.Competitions,
			MinMinute:       cfg.Engine.MinMinute,
			MaxMinute:       cfg.Engine.MaxMinute,
			MaxGoalDiff:     cfg.Engine.MaxGoalDiff,
			BusChannel:      cfg.Engine.BusChannel,
			BusStream:       cfg.Engine.BusStream,
		},
		logger,
	)
	closers = append(closers, deps.Engine.Close)

	// Settlement loop.
	deps.Settler = settlement.New(deps.Feed, deps.Store, deps.Notifier, settlement.Config{
		Interval:         cfg.Settlement.Interval.Duration,
		Delay:            cfg.Settlement.Delay.Duration,
		InterSignalDelay: cfg.Settlement.InterSignalDelay.Duration,
	}, logger)

	// WebSocket hub, fed by the engine's emit hook.
	deps.Hub = ws.NewHub(logger)
	deps.Engine.OnEmit(deps.Hub.BroadcastSignal)

	// HTTP control surface.
	if cfg.Server.Enabled {
		deps.Server = server.New(
			server.Config{
				Port:        cfg.Server.Port,
				CORSOrigins: cfg.Server.CORSOrigins,
			},
			server.Handlers{
				Health:     handler.NewHealthHandler(logger),
				Engine:     handler.NewEngineHandler(deps.Engine, logger),
				Settlement: handler.NewSettlementHandler(deps.Settler, logger),
				Signals:    handler.NewSignalsHandler(deps.Store, logger),
			},
			deps.Hub,
			logger,
		)
	}

	return deps, cleanup, nil
}
