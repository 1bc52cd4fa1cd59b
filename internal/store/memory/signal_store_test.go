package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

func newSignal(id, eventID string, strategy domain.StrategyCode, createdAt time.Time) *domain.Signal {
	return &domain.Signal{
		CandidateSignal: domain.CandidateSignal{
			EventID:  eventID,
			Strategy: strategy,
			Market:   "Over 2.5 Goals",
		},
		ID:        id,
		Status:    domain.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestAppendAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewSignalStore()
	now := time.Now().UTC()

	require.NoError(t, s.Append(ctx, newSignal("a", "ev1", domain.StrategyFirstHalf, now)))

	got, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ev1", got.EventID)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppendRejectsMissingID(t *testing.T) {
	s := NewSignalStore()
	err := s.Append(context.Background(), &domain.Signal{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListByStatusNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewSignalStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, newSignal("old", "ev1", domain.StrategyFirstHalf, base)))
	require.NoError(t, s.Append(ctx, newSignal("new", "ev2", domain.StrategyLateGame, base.Add(time.Hour))))

	got, err := s.ListByStatus(ctx, domain.StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)

	limited, err := s.ListByStatus(ctx, domain.StatusPending, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSettle(t *testing.T) {
	ctx := context.Background()
	s := NewSignalStore()
	now := time.Now().UTC()

	require.NoError(t, s.Append(ctx, newSignal("a", "ev1", domain.StrategyLateGame, now)))

	final := domain.Score{Home: 3}
	require.NoError(t, s.Settle(ctx, "a", domain.StatusWon, final, now.Add(2*time.Hour)))

	got, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, got.Status)
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, final, *got.FinalScore)
	require.NotNil(t, got.SettledAt)

	pending, err := s.ListByStatus(ctx, domain.StatusPending, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.Settle(ctx, "missing", domain.StatusLost, final, now), domain.ErrNotFound)
}

func TestCountToday(t *testing.T) {
	ctx := context.Background()
	s := NewSignalStore()
	day := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, newSignal("a", "ev1", domain.StrategyLateGame, day)))
	require.NoError(t, s.Append(ctx, newSignal("b", "ev1", domain.StrategyLateGame, day.Add(40*time.Minute)))) // next UTC day
	require.NoError(t, s.Append(ctx, newSignal("c", "ev1", domain.StrategyFirstHalf, day)))

	n, err := s.CountToday(ctx, "ev1", domain.StrategyLateGame, day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountToday(ctx, "ev1", domain.StrategyFirstHalf, day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
