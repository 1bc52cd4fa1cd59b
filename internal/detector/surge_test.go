package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

var surgeNow = time.Date(2025, 3, 1, 15, 33, 0, 0, time.UTC)

func snapAt(minutesAgo int, score domain.Score, stats domain.MatchStats) domain.Snapshot {
	return domain.Snapshot{
		EventID:    "ev1",
		ObservedAt: surgeNow.Add(-time.Duration(minutesAgo) * time.Minute),
		Score:      score,
		Stats:      stats,
	}
}

func cornerStats(c int) domain.MatchStats {
	return domain.MatchStats{Home: domain.SideStats{Corners: c}}
}

func TestDetectSurgeCornerThresholdExact(t *testing.T) {
	score := domain.Score{}
	history := []domain.Snapshot{snapAt(10, score, cornerStats(2))}

	// Delta exactly 3 fires.
	res := DetectSurge(history, surgeNow, score, cornerStats(5))
	require.True(t, res.Detected)
	assert.Equal(t, TriggerCornerSiege, res.Trigger)
	assert.Equal(t, 3, res.Deltas.Corners)
	assert.Equal(t, 10, res.TimeframeMinutes)

	// Delta 2 does not.
	res = DetectSurge(history, surgeNow, score, cornerStats(4))
	assert.False(t, res.Detected)
}

func TestDetectSurgeScoreChangeResetsMomentum(t *testing.T) {
	// Goal at minute 30: older snapshots carry 0-0, the burst happened since.
	current := domain.Score{Home: 1}
	history := []domain.Snapshot{
		snapAt(9, domain.Score{}, cornerStats(1)),
		snapAt(6, domain.Score{}, cornerStats(2)),
	}

	res := DetectSurge(history, surgeNow, current, cornerStats(6))
	assert.False(t, res.Detected, "pre-goal history must not be considered")
}

func TestDetectSurgeStopsAtScoreMismatchMidWalk(t *testing.T) {
	current := domain.Score{Home: 1}
	history := []domain.Snapshot{
		snapAt(10, domain.Score{}, cornerStats(0)), // pre-goal, big delta
		snapAt(3, current, cornerStats(5)),         // post-goal, small delta
	}

	res := DetectSurge(history, surgeNow, current, cornerStats(6))
	assert.False(t, res.Detected)
}

func TestDetectSurgeSoTNamingPriority(t *testing.T) {
	score := domain.Score{}
	history := []domain.Snapshot{snapAt(8, score, domain.MatchStats{
		Home: domain.SideStats{Shots: 4, ShotsOnTarget: 1},
	})}
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 9, ShotsOnTarget: 4},
	}

	// Both shot delta (5 >= 4) and SoT delta (3 >= 2) hold; SoT wins naming.
	res := DetectSurge(history, surgeNow, score, stats)
	require.True(t, res.Detected)
	assert.Equal(t, TriggerSoTThreat, res.Trigger)
}

func TestDetectSurgeShotSurgeWithoutSoT(t *testing.T) {
	score := domain.Score{}
	history := []domain.Snapshot{snapAt(8, score, domain.MatchStats{})}
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 3, ShotsOnTarget: 1},
		Away: domain.SideStats{Shots: 2},
	}

	res := DetectSurge(history, surgeNow, score, stats)
	require.True(t, res.Detected)
	assert.Equal(t, TriggerShotSurge, res.Trigger)
}

func TestDetectSurgeXGSpikeRequiresPositiveCurrentXG(t *testing.T) {
	score := domain.Score{}
	history := []domain.Snapshot{snapAt(8, score, domain.MatchStats{
		Home: domain.SideStats{ExpectedGoals: -0.5},
	})}

	// Delta 0.5 but current xG is zero: no detection.
	res := DetectSurge(history, surgeNow, score, domain.MatchStats{})
	assert.False(t, res.Detected)

	// Positive current xG with delta over threshold fires.
	history = []domain.Snapshot{snapAt(8, score, domain.MatchStats{
		Home: domain.SideStats{ExpectedGoals: 0.3},
	})}
	res = DetectSurge(history, surgeNow, score, domain.MatchStats{
		Home: domain.SideStats{ExpectedGoals: 0.8},
	})
	require.True(t, res.Detected)
	assert.Equal(t, TriggerXGSpike, res.Trigger)
}

func TestDetectSurgeIgnoresEntriesBeyondLookback(t *testing.T) {
	score := domain.Score{}
	history := []domain.Snapshot{snapAt(14, score, cornerStats(0))}

	res := DetectSurge(history, surgeNow, score, cornerStats(5))
	assert.False(t, res.Detected)
}

func TestDetectSurgeEmptyHistory(t *testing.T) {
	res := DetectSurge(nil, surgeNow, domain.Score{}, cornerStats(9))
	assert.False(t, res.Detected)
}
