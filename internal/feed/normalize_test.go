package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

func TestNormalizeStage(t *testing.T) {
	cases := map[string]domain.Stage{
		"1st Half":   domain.StageFirstHalf,
		"HALF TIME":  domain.StageHalfTime,
		"2nd half":   domain.StageSecondHalf,
		"Finished":   domain.StageFinished,
		"Full Time":  domain.StageFinished,
		"Postponed":  domain.StageUnknown,
		"":           domain.StageUnknown,
		" first half ": domain.StageFirstHalf,
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalizeStage(raw), "stage %q", raw)
	}
}

func TestNormalizeEvent(t *testing.T) {
	observedAt := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	ev := normalizeEvent("England: Premier League", apiEvent{
		ID:       "ev1",
		HomeTeam: "Alpha",
		AwayTeam: "Beta",
		Score:    "2-1",
		Stage:    "2nd Half",
		Elapsed:  67,
		HomeOdds: 1.45,
	}, observedAt)

	assert.Equal(t, "ev1", ev.ID)
	assert.Equal(t, "England: Premier League", ev.Competition)
	assert.Equal(t, domain.Score{Home: 2, Away: 1}, ev.Score)
	assert.Equal(t, domain.StageSecondHalf, ev.Stage)
	assert.Equal(t, 67, ev.Elapsed)
	assert.Equal(t, 1.45, ev.HomeOdds)
	assert.Equal(t, observedAt, ev.ObservedAt)

	// Garbage score defaults to 0-0 instead of failing the whole poll.
	bad := normalizeEvent("X", apiEvent{ID: "ev2", Score: "abandoned"}, observedAt)
	assert.Equal(t, domain.Score{}, bad.Score)
}

func TestNormalizeStats(t *testing.T) {
	rows := []apiStatRow{
		{Name: "Total Shots", Home: "11", Away: "4"},
		{Name: "Shots on Goal", Home: "5", Away: "1"},
		{Name: "Corner Kicks", Home: "7", Away: "2"},
		{Name: "Expected Goals (xG)", Home: "1.84", Away: "0.42"},
		{Name: "Ball Possession", Home: "61%", Away: "39%"},
		{Name: "Red Cards", Home: "0", Away: "1"},
		{Name: "Offsides", Home: "3", Away: "0"}, // not tracked, ignored
	}

	stats := normalizeStats(rows)

	assert.Equal(t, 11, stats.Home.Shots)
	assert.Equal(t, 4, stats.Away.Shots)
	assert.Equal(t, 5, stats.Home.ShotsOnTarget)
	assert.Equal(t, 7, stats.Home.Corners)
	assert.InDelta(t, 1.84, stats.Home.ExpectedGoals, 1e-9)
	assert.InDelta(t, 0.42, stats.Away.ExpectedGoals, 1e-9)
	assert.Equal(t, 61, stats.Home.Possession)
	assert.Equal(t, 39, stats.Away.Possession)
	assert.Equal(t, 1, stats.Away.RedCards)
}

func TestNormalizeStatsDefaultsMissingToZero(t *testing.T) {
	stats := normalizeStats([]apiStatRow{
		{Name: "Corners", Home: "3", Away: "n/a"},
	})

	assert.Equal(t, 3, stats.Home.Corners)
	assert.Equal(t, 0, stats.Away.Corners)
	assert.Equal(t, 0, stats.Home.Shots)
	assert.Zero(t, stats.Home.ExpectedGoals)
}

func TestNormalizePriorMatches(t *testing.T) {
	matches := []apiPriorMatch{
		{PlayedAt: "2024-10-12T15:00:00Z", HomeTeam: "Alpha", AwayTeam: "Beta", Score: "2-1"},
		{PlayedAt: "not a time", HomeTeam: "Alpha", AwayTeam: "Beta", Score: "1-0"},
		{PlayedAt: "2024-05-01T19:45:00Z", HomeTeam: "Beta", AwayTeam: "Alpha", Score: "bad"},
	}

	out := normalizePriorMatches(matches)
	require.Len(t, out, 1)
	assert.Equal(t, domain.Score{Home: 2, Away: 1}, out[0].Score)
	assert.Equal(t, time.Date(2024, 10, 12, 15, 0, 0, 0, time.UTC), out[0].PlayedAt)
}
