package snapshot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

func TestRecordBoundsHistory(t *testing.T) {
	base := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore()
	s.now = func() time.Time { return clock }

	for i := 0; i < 7; i++ {
		clock = base.Add(time.Duration(i) * 3 * time.Minute)
		s.Record("ev1", domain.Score{}, domain.MatchStats{Home: domain.SideStats{Shots: i}})
	}

	h := s.History("ev1")
	require.Len(t, h, HistoryCap)

	// The four most recent entries, in strictly increasing time order.
	for i := range h {
		assert.Equal(t, 3+i, h[i].Stats.Home.Shots)
		if i > 0 {
			assert.True(t, h[i].ObservedAt.After(h[i-1].ObservedAt))
		}
	}
}

func TestHistoryEmptyForUnknownEvent(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.History("nope"))
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Record("ev1", domain.Score{Home: 1}, domain.MatchStats{})

	h := s.History("ev1")
	h[0].Score = domain.Score{Home: 9, Away: 9}

	assert.Equal(t, domain.Score{Home: 1}, s.History("ev1")[0].Score)
}

func TestSweepEvictsStaleHistories(t *testing.T) {
	base := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore()
	s.now = func() time.Time { return clock }

	s.Record("stale", domain.Score{}, domain.MatchStats{})

	clock = base.Add(20 * time.Minute)
	s.Record("fresh", domain.Score{}, domain.MatchStats{})

	// stale's newest entry is now 24 minutes old, fresh's only 4.
	clock = base.Add(24 * time.Minute)
	removed := s.Sweep()

	assert.Equal(t, 1, removed)
	assert.Empty(t, s.History("stale"))
	assert.Len(t, s.History("fresh"), 1)
	assert.Equal(t, 1, s.Len())
}

func TestSweepKeepsActiveEvents(t *testing.T) {
	base := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore()
	s.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		s.Record(fmt.Sprintf("ev%d", i), domain.Score{}, domain.MatchStats{})
	}

	clock = base.Add(10 * time.Minute)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 3, s.Len())
}
