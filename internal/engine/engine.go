// Package engine hosts the emission governor: it drives the scan cycle,
// enforces the per-day signal caps, runs the freshness re-check, and is the
// only writer of the snapshot store and the daily limit counter.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goalfeed/goalfeed/internal/corroborate"
	"github.com/goalfeed/goalfeed/internal/detector"
	"github.com/goalfeed/goalfeed/internal/domain"
	"github.com/goalfeed/goalfeed/internal/snapshot"
	"github.com/goalfeed/goalfeed/internal/strategy"
)

var (
	// ErrAlreadyRunning is returned by Start when the engine is running.
	ErrAlreadyRunning = errors.New("engine: already running")

	// ErrNotRunning is returned by Stop when the engine is stopped.
	ErrNotRunning = errors.New("engine: not running")
)

// Notifier delivers fire-and-forget notifications; failures are logged and
// never block emission.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config holds the engine's timing and filtering parameters.
type Config struct {
	ScanInterval    time.Duration
	InterEventDelay time.Duration
	PostEmitDelay   time.Duration
	Competitions    []string
	MinMinute       int
	MaxMinute       int
	MaxGoalDiff     int
	BusChannel      string
	BusStream       string
}

// Counters is a snapshot of the engine's activity counters.
type Counters struct {
	Scans          int `json:"scans"`
	EventsExamined int `json:"events_examined"`
	SignalsEmitted int `json:"signals_emitted"`
}

// Status is the control-surface view of the engine.
type Status struct {
	Running       bool      `json:"running"`
	FilterEnabled bool      `json:"filter_enabled"`
	LastScanAt    time.Time `json:"last_scan_at"`
	Tracked       int       `json:"tracked_events"`
	Counters      Counters  `json:"counters"`
}

// Engine owns the scan cycle and all engine-process state. One instance
// exists per process; Start enforces that only one cycle loop runs.
type Engine struct {
	feed      domain.FeedSource
	store     domain.SignalStore
	snapshots *snapshot.Store
	limits    *DailyLimits
	reviewer  *corroborate.Reviewer
	notifier  Notifier
	bus       domain.SignalBus
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	// onEmit hooks observe every persisted signal (websocket hub).
	onEmit []func(domain.Signal)

	mu            sync.Mutex
	running       bool
	filterEnabled bool
	scanning      bool
	lastScanAt    time.Time
	counters      Counters
	cancel        context.CancelFunc
	done          chan struct{}
}

// New creates an Engine. notifier and bus may be nil.
func New(
	feed domain.FeedSource,
	store domain.SignalStore,
	snapshots *snapshot.Store,
	reviewer *corroborate.Reviewer,
	notifier Notifier,
	bus domain.SignalBus,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		feed:      feed,
		store:     store,
		snapshots: snapshots,
		limits:    NewDailyLimits(),
		reviewer:  reviewer,
		notifier:  notifier,
		bus:       bus,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "engine")),
		now:       time.Now,
	}
}

// OnEmit registers a hook invoked for every persisted signal.
func (e *Engine) OnEmit(fn func(domain.Signal)) {
	e.onEmit = append(e.onEmit, fn)
}

// Start launches the scan loop. filterEnabled controls the competition
// allow-list filter for this run.
func (e *Engine) Start(filterEnabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.filterEnabled = filterEnabled
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(ctx, e.done)
	e.logger.Info("engine started", slog.Bool("filter_enabled", filterEnabled))
	return nil
}

// Stop cancels the scan loop's timer. An in-flight scan iteration completes
// normally before the loop exits.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done
	e.logger.Info("engine stopped")
	return nil
}

// Close stops the loop if it is running. Used on process shutdown.
func (e *Engine) Close() {
	_ = e.Stop()
}

// Status reports the engine's current operational state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:       e.running,
		FilterEnabled: e.filterEnabled,
		LastScanAt:    e.lastScanAt,
		Tracked:       e.snapshots.Len(),
		Counters:      e.counters,
	}
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// First scan immediately, then on the ticker.
	e.RunScanOnce(ctx)

	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.RunScanOnce(ctx)
		}
	}
}

// RunScanOnce executes a single scan cycle. Cycles are mutually exclusive:
// if one is still running when another is requested, the request is skipped
// rather than overlapped.
func (e *Engine) RunScanOnce(ctx context.Context) (int, error) {
	e.mu.Lock()
	if e.scanning {
		e.mu.Unlock()
		e.logger.Warn("scan still running, skipping cycle")
		return 0, nil
	}
	e.scanning = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.scanning = false
		e.lastScanAt = e.now()
		e.counters.Scans++
		e.mu.Unlock()
	}()

	emitted, err := e.scan(ctx)
	if err != nil {
		e.logger.Error("scan cycle aborted", slog.String("error", err.Error()))
		return emitted, err
	}
	return emitted, nil
}

// scan is one full cycle: sweep, fetch, filter, and per-event processing.
func (e *Engine) scan(ctx context.Context) (int, error) {
	swept := e.snapshots.Sweep()
	if swept > 0 {
		e.logger.Debug("swept stale histories", slog.Int("events", swept))
	}

	events, err := e.feed.LiveEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine: fetch live events: %w", err)
	}

	emitted := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			return emitted, ctx.Err()
		}
		if !e.candidate(ev) {
			continue
		}

		e.mu.Lock()
		e.counters.EventsExamined++
		e.mu.Unlock()

		n, err := e.processEvent(ctx, ev)
		if err != nil {
			return emitted, err
		}
		emitted += n

		if e.cfg.InterEventDelay > 0 {
			sleepCtx(ctx, e.cfg.InterEventDelay)
		}
	}

	e.logger.Info("scan cycle complete",
		slog.Int("events", len(events)),
		slog.Int("emitted", emitted),
	)
	return emitted, nil
}

// candidate applies the competition allow-list and the time/score window.
func (e *Engine) candidate(ev domain.LiveEvent) bool {
	if !ev.InPlay() {
		return false
	}
	if ev.Elapsed < e.cfg.MinMinute || ev.Elapsed > e.cfg.MaxMinute {
		return false
	}
	if ev.Score.AbsDiff() > e.cfg.MaxGoalDiff {
		return false
	}
	e.mu.Lock()
	filter := e.filterEnabled
	e.mu.Unlock()
	if filter && !competitionAllowed(e.cfg.Competitions, ev.Competition) {
		return false
	}
	return true
}

// competitionAllowed does a case-normalized substring match in both
// directions, so "Premier League" matches "England: Premier League".
func competitionAllowed(allowed []string, competition string) bool {
	comp := strings.ToLower(strings.TrimSpace(competition))
	for _, a := range allowed {
		al := strings.ToLower(strings.TrimSpace(a))
		if al == "" {
			continue
		}
		if strings.Contains(comp, al) || strings.Contains(al, comp) {
			return true
		}
	}
	return false
}

// processEvent runs the full per-event pipeline: stats fetch, snapshot
// record, detection, classification, corroboration, freshness re-check, cap
// check, persist, and fan-out.
func (e *Engine) processEvent(ctx context.Context, ev domain.LiveEvent) (int, error) {
	stats, err := e.feed.EventStatistics(ctx, ev.ID)
	if err != nil {
		e.logger.Warn("statistics fetch failed, skipping event",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
		return 0, nil
	}
	if stats == nil {
		return 0, nil
	}

	e.snapshots.Record(ev.ID, ev.Score, *stats)
	history := e.snapshots.History(ev.ID)
	now := e.now()

	in := strategy.Input{
		Event:    ev,
		Elapsed:  ev.Elapsed,
		Stats:    *stats,
		Surge:    detector.DetectSurge(history, now, ev.Score, *stats),
		Collapse: detector.DetectCollapse(history, now, ev.Score, *stats),
	}

	candidates := strategy.Classify(in)
	if len(candidates) == 0 {
		return 0, nil
	}

	emitted := 0
	for i := range candidates {
		cand := &candidates[i]

		if !e.reviewer.Review(ctx, cand, ev) {
			continue
		}
		if stale, err := e.scoreChanged(ctx, ev); err != nil || stale {
			if err != nil {
				e.logger.Warn("freshness re-check failed, discarding candidate",
					slog.String("event_id", ev.ID),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if !e.allowEmission(ctx, cand.EventID, cand.Strategy) {
			e.logger.Debug("daily cap reached, discarding candidate",
				slog.String("event_id", cand.EventID),
				slog.String("strategy", string(cand.Strategy)),
			)
			continue
		}

		sig := domain.Signal{
			CandidateSignal: *cand,
			ID:              uuid.NewString(),
			Status:          domain.StatusPending,
			CreatedAt:       e.now(),
		}
		if err := e.store.Append(ctx, &sig); err != nil {
			return emitted, fmt.Errorf("engine: persist signal: %w", err)
		}
		e.limits.Record(cand.EventID, cand.Strategy)

		e.mu.Lock()
		e.counters.SignalsEmitted++
		e.mu.Unlock()
		emitted++

		e.logger.Info("signal emitted",
			slog.String("signal_id", sig.ID),
			slog.String("event_id", sig.EventID),
			slog.String("strategy", string(sig.Strategy)),
			slog.String("market", sig.Market),
			slog.Int("confidence", sig.Confidence),
		)

		e.fanOut(sig)

		if e.cfg.PostEmitDelay > 0 {
			sleepCtx(ctx, e.cfg.PostEmitDelay)
		}
	}
	return emitted, nil
}

// scoreChanged re-fetches the live feed immediately before persisting and
// reports whether the event's score moved since the triggering snapshot.
// A missing event is treated as stale.
func (e *Engine) scoreChanged(ctx context.Context, ev domain.LiveEvent) (bool, error) {
	events, err := e.feed.LiveEvents(ctx)
	if err != nil {
		return false, err
	}
	for _, fresh := range events {
		if fresh.ID == ev.ID {
			return fresh.Score != ev.Score, nil
		}
	}
	return true, nil
}

// fanOut delivers a persisted signal to the notifier, the bus, and any
// registered hooks. All deliveries are best-effort.
func (e *Engine) fanOut(sig domain.Signal) {
	for _, fn := range e.onEmit {
		fn(sig)
	}

	payload, err := json.Marshal(sig)
	if err == nil && e.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.bus.Publish(ctx, e.cfg.BusChannel, payload); err != nil {
			e.logger.Warn("bus publish failed", slog.String("error", err.Error()))
		}
		if err := e.bus.StreamAppend(ctx, e.cfg.BusStream, payload); err != nil {
			e.logger.Warn("bus stream append failed", slog.String("error", err.Error()))
		}
	}

	if e.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			title := fmt.Sprintf("%s %s vs %s", sig.Strategy, sig.HomeTeam, sig.AwayTeam)
			msg := fmt.Sprintf("%s @ %d' (%s), confidence %d%%\n%s",
				sig.Market, sig.EntryMinute, sig.EntryScore, sig.Confidence,
				strings.Join(sig.Reasons, "; "),
			)
			if err := e.notifier.Notify(ctx, "signal", title, msg); err != nil {
				e.logger.Warn("notification failed", slog.String("error", err.Error()))
			}
		}()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
