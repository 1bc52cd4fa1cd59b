// Package snapshot implements the per-event bounded history of statistic
// observations that the anomaly detectors read.
package snapshot

import (
	"sync"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

const (
	// HistoryCap bounds each event's history to the most recent entries.
	HistoryCap = 4

	// SweepWindow is twice the detection lookback: a history whose newest
	// entry is at least this old is considered dead and reclaimed by Sweep.
	SweepWindow = 24 * time.Minute
)

// Store owns every event history. It is written only by the scan cycle's
// single logical thread of control; the mutex serializes access for readers
// on other goroutines (control surface, tests).
type Store struct {
	mu        sync.RWMutex
	histories map[string][]domain.Snapshot
	now       func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		histories: make(map[string][]domain.Snapshot),
		now:       time.Now,
	}
}

// SetClock overrides the store's time source. Tests use it to drive
// deterministic histories.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Record appends a new snapshot for the event at the current time. When the
// history exceeds HistoryCap the oldest entry is evicted. Callers take at
// most one Record per event per scan cycle.
func (s *Store) Record(eventID string, score domain.Score, stats domain.MatchStats) domain.Snapshot {
	snap := domain.Snapshot{
		EventID:    eventID,
		ObservedAt: s.now(),
		Score:      score,
		Stats:      stats,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.histories[eventID], snap)
	if len(h) > HistoryCap {
		h = h[len(h)-HistoryCap:]
	}
	s.histories[eventID] = h
	return snap
}

// History returns a copy of the event's ordered snapshot sequence, oldest
// first. An event with no prior observation yields an empty slice.
func (s *Store) History(eventID string) []domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.histories[eventID]
	out := make([]domain.Snapshot, len(h))
	copy(out, h)
	return out
}

// Sweep deletes every history whose newest entry is at least SweepWindow old
// and returns the number of events reclaimed. This is the only way memory is
// reclaimed; the engine invokes it at the start of every scan cycle.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-SweepWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for eventID, h := range s.histories {
		if len(h) == 0 || !h[len(h)-1].ObservedAt.After(cutoff) {
			delete(s.histories, eventID)
			removed++
		}
	}
	return removed
}

// Len returns the number of events currently tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories)
}
