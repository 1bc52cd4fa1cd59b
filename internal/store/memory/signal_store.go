// Package memory implements domain store interfaces with in-process maps.
// It backs tests and DSN-less runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// SignalStore is an in-memory implementation of domain.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Signal
}

// NewSignalStore creates an empty store.
func NewSignalStore() *SignalStore {
	return &SignalStore{data: make(map[string]*domain.Signal)}
}

// Append stores a new signal keyed by ID.
func (s *SignalStore) Append(_ context.Context, sig *domain.Signal) error {
	if sig == nil || sig.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sig
	s.data[sig.ID] = &cp
	return nil
}

// GetByID returns a copy of the signal, or ErrNotFound.
func (s *SignalStore) GetByID(_ context.Context, id string) (*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sig, ok := s.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sig
	return &cp, nil
}

// ListByStatus returns signals with the given status, newest first.
func (s *SignalStore) ListByStatus(_ context.Context, status domain.SignalStatus, limit int) ([]domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Signal
	for _, sig := range s.data {
		if sig.Status == status {
			out = append(out, *sig)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Settle transitions a signal to a terminal status.
func (s *SignalStore) Settle(_ context.Context, id string, status domain.SignalStatus, final domain.Score, settledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	sig.Status = status
	sig.FinalScore = &final
	sig.SettledAt = &settledAt
	return nil
}

// CountToday counts signals for the pair created on the UTC date of day.
func (s *SignalStore) CountToday(_ context.Context, eventID string, strategy domain.StrategyCode, day time.Time) (int, error) {
	date := day.UTC().Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sig := range s.data {
		if sig.EventID == eventID && sig.Strategy == strategy &&
			sig.CreatedAt.UTC().Format(time.DateOnly) == date {
			n++
		}
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*SignalStore)(nil)
