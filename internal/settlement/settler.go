package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// Notifier mirrors the engine's notification sink. Failures are logged and
// never block settlement.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config holds the settler's timing parameters.
type Config struct {
	// Interval between settlement cycles.
	Interval time.Duration

	// Delay a signal must age past its creation before it is eligible.
	Delay time.Duration

	// InterSignalDelay throttles final-record fetches within one cycle.
	InterSignalDelay time.Duration
}

// Settler runs the delayed settlement loop. Signals whose final record is not
// yet available, or whose market text matches no known predicate, stay
// pending and are retried on the next cycle.
type Settler struct {
	feed     domain.FeedSource
	store    domain.SignalStore
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Settler. notifier may be nil.
func New(feed domain.FeedSource, store domain.SignalStore, notifier Notifier, cfg Config, logger *slog.Logger) *Settler {
	return &Settler{
		feed:     feed,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "settlement")),
		now:      time.Now,
	}
}

// Run drives settlement cycles until ctx is cancelled. An in-flight cycle
// completes normally after cancellation.
func (s *Settler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("settlement loop started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Duration("delay", s.cfg.Delay),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settlement loop stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("settlement cycle aborted", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce executes a single settlement cycle and returns the number of
// signals settled.
func (s *Settler) RunOnce(ctx context.Context) (int, error) {
	pending, err := s.store.ListByStatus(ctx, domain.StatusPending, 0)
	if err != nil {
		return 0, fmt.Errorf("settlement: list pending: %w", err)
	}

	now := s.now()
	settled := 0
	for i := range pending {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		sig := &pending[i]

		if now.Before(sig.CreatedAt.Add(s.cfg.Delay)) {
			continue
		}

		ok, err := s.settleOne(ctx, sig)
		if err != nil {
			return settled, err
		}
		if ok {
			settled++
		}

		if s.cfg.InterSignalDelay > 0 {
			sleepCtx(ctx, s.cfg.InterSignalDelay)
		}
	}

	if settled > 0 {
		s.logger.Info("settlement cycle complete",
			slog.Int("pending", len(pending)),
			slog.Int("settled", settled),
		)
	}
	return settled, nil
}

// settleOne resolves a single eligible signal. It reports false, nil when the
// signal must stay pending for a later retry.
func (s *Settler) settleOne(ctx context.Context, sig *domain.Signal) (bool, error) {
	rec, err := s.feed.FinalRecord(ctx, sig.EventID)
	if err != nil {
		s.logger.Warn("final record fetch failed, will retry",
			slog.String("signal_id", sig.ID),
			slog.String("event_id", sig.EventID),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	if rec == nil || !rec.Finished {
		return false, nil
	}

	status, err := Evaluate(sig.Market, sig.EntryScore, *rec)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownMarket) {
			s.logger.Warn("unknown market, signal stays pending",
				slog.String("signal_id", sig.ID),
				slog.String("market", sig.Market),
			)
			return false, nil
		}
		return false, err
	}

	settledAt := s.now()
	if err := s.store.Settle(ctx, sig.ID, status, rec.FinalScore, settledAt); err != nil {
		return false, fmt.Errorf("settlement: settle %s: %w", sig.ID, err)
	}

	s.logger.Info("signal settled",
		slog.String("signal_id", sig.ID),
		slog.String("event_id", sig.EventID),
		slog.String("market", sig.Market),
		slog.String("status", string(status)),
		slog.String("final_score", rec.FinalScore.String()),
	)

	s.notify(*sig, status, rec.FinalScore)
	return true, nil
}

// notify reports the outcome through the notification sink, fire-and-forget.
func (s *Settler) notify(sig domain.Signal, status domain.SignalStatus, final domain.Score) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		title := fmt.Sprintf("%s %s vs %s", status, sig.HomeTeam, sig.AwayTeam)
		msg := fmt.Sprintf("%s entered at %d' (%s), final %s",
			sig.Market, sig.EntryMinute, sig.EntryScore, final,
		)
		if err := s.notifier.Notify(ctx, "settlement", title, msg); err != nil {
			s.logger.Warn("settlement notification failed", slog.String("error", err.Error()))
		}
	}()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
