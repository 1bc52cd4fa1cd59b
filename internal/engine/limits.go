package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// Per-day signal caps per (event, strategy). The surge strategies carry their
// own caps; everything else defaults to one.
const defaultDailyCap = 1

func dailyCap(code domain.StrategyCode) int {
	switch code {
	case domain.StrategyFirstHalf:
		return 1
	case domain.StrategyLateGame:
		return 2
	default:
		return defaultDailyCap
	}
}

type limitKey struct {
	eventID  string
	strategy domain.StrategyCode
}

// DailyLimits counts emitted signals per (event, strategy) for the current
// UTC date. The counter starts empty at process start and whenever the date
// rolls over; the emission path primes each pair from the signal store before
// its first cap check so the caps hold across restarts.
type DailyLimits struct {
	mu     sync.Mutex
	day    string
	counts map[limitKey]int
	primed map[limitKey]bool
	now    func() time.Time
}

// NewDailyLimits creates an empty counter.
func NewDailyLimits() *DailyLimits {
	return &DailyLimits{
		counts: make(map[limitKey]int),
		primed: make(map[limitKey]bool),
		now:    time.Now,
	}
}

// Allow reports whether another signal for the pair fits under today's cap.
// It does not count the signal; call Record after a successful persist.
func (l *DailyLimits) Allow(eventID string, strategy domain.StrategyCode) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollLocked()
	return l.counts[limitKey{eventID, strategy}] < dailyCap(strategy)
}

// Record counts one emitted signal for the pair.
func (l *DailyLimits) Record(eventID string, strategy domain.StrategyCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollLocked()
	l.counts[limitKey{eventID, strategy}]++
}

// Count returns today's count for the pair.
func (l *DailyLimits) Count(eventID string, strategy domain.StrategyCode) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollLocked()
	return l.counts[limitKey{eventID, strategy}]
}

// Primed reports whether the pair's counter was already seeded from durable
// storage today.
func (l *DailyLimits) Primed(eventID string, strategy domain.StrategyCode) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollLocked()
	return l.primed[limitKey{eventID, strategy}]
}

// Prime seeds the pair's counter with the persisted count for today. A higher
// in-memory count recorded since the last rollover is kept.
func (l *DailyLimits) Prime(eventID string, strategy domain.StrategyCode, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollLocked()
	k := limitKey{eventID, strategy}
	if count > l.counts[k] {
		l.counts[k] = count
	}
	l.primed[k] = true
}

func (l *DailyLimits) rollLocked() {
	today := l.now().UTC().Format(time.DateOnly)
	if l.day != today {
		l.day = today
		l.counts = make(map[limitKey]int)
		l.primed = make(map[limitKey]bool)
	}
}

// allowEmission checks the pair's daily cap, priming the in-memory counter
// from the signal store the first time the pair is seen today. A lookup
// failure falls back to the in-memory count rather than blocking emission.
func (e *Engine) allowEmission(ctx context.Context, eventID string, strategy domain.StrategyCode) bool {
	if !e.limits.Primed(eventID, strategy) {
		n, err := e.store.CountToday(ctx, eventID, strategy, e.now())
		if err != nil {
			e.logger.Warn("persisted cap lookup failed, using in-memory count",
				slog.String("event_id", eventID),
				slog.String("error", err.Error()),
			)
		} else {
			e.limits.Prime(eventID, strategy, n)
		}
	}
	return e.limits.Allow(eventID, strategy)
}
