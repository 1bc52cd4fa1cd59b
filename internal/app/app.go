// Package app wires the goalfeed components together and runs the selected
// mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goalfeed/goalfeed/internal/config"
)

// App is the composed application. Construct with New, run with Run, and
// always call Close afterwards.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	deps    *Dependencies
	cleanup func()
}

// New wires all dependencies for the configured mode.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	deps, cleanup, err := Wire(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "app")),
		deps:    deps,
		cleanup: cleanup,
	}, nil
}

// Run dispatches to the configured mode and blocks until the context is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting", slog.String("mode", a.cfg.Mode))

	switch a.cfg.Mode {
	case "engine":
		return a.runEngine(ctx)
	case "settle":
		return a.runSettle(ctx)
	case "serve":
		return a.runServe(ctx)
	default:
		return fmt.Errorf("app: unknown mode %q", a.cfg.Mode)
	}
}

// Close releases all wired resources in reverse construction order.
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// runEngine is the full deployment: scan loop, settlement loop, and the HTTP
// control surface with the WebSocket stream.
func (a *App) runEngine(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Engine.AutoStart {
		if err := a.deps.Engine.Start(a.cfg.Engine.FilterEnabled); err != nil {
			return fmt.Errorf("app: engine start: %w", err)
		}
	} else {
		a.logger.Info("engine idle, waiting for start via API")
	}

	g.Go(func() error {
		a.deps.Settler.Run(ctx)
		return nil
	})

	a.startServer(ctx, g)

	g.Go(func() error {
		<-ctx.Done()
		a.deps.Engine.Close()
		return nil
	})

	return g.Wait()
}

// runSettle runs only the settlement loop, plus the control surface when
// enabled. Useful for catching up a backlog without scanning.
func (a *App) runSettle(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.deps.Settler.Run(ctx)
		return nil
	})

	a.startServer(ctx, g)

	return g.Wait()
}

// runServe exposes the control surface and signal stream without running any
// background loop. The engine can still be started through the API.
func (a *App) runServe(ctx context.Context) error {
	if a.deps.Server == nil {
		return fmt.Errorf("app: serve mode requires server.enabled")
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g)

	g.Go(func() error {
		<-ctx.Done()
		a.deps.Engine.Close()
		return nil
	})

	return g.Wait()
}

// startServer launches the HTTP server and WebSocket hub on the group when
// the server is enabled, with a shutdown watcher tied to ctx.
func (a *App) startServer(ctx context.Context, g *errgroup.Group) {
	if a.deps.Server == nil {
		return
	}

	g.Go(func() error {
		return a.deps.Hub.Run(ctx)
	})

	g.Go(func() error {
		return a.deps.Server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.deps.Server.Shutdown(shutdownCtx)
	})
}
