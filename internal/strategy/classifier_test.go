package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/detector"
	"github.com/goalfeed/goalfeed/internal/domain"
)

func surgeInput(elapsed int, score domain.Score, stats domain.MatchStats) Input {
	return Input{
		Event: domain.LiveEvent{
			ID:          "ev1",
			Competition: "Premier League",
			HomeTeam:    "Home FC",
			AwayTeam:    "Away FC",
			Score:       score,
			Stage:       stageFor(elapsed),
			Elapsed:     elapsed,
		},
		Elapsed: elapsed,
		Stats:   stats,
		Surge: detector.Result{
			Detected:         true,
			Trigger:          detector.TriggerCornerSiege,
			Reason:           "+4 corners in 8m",
			TimeframeMinutes: 8,
		},
	}
}

func stageFor(elapsed int) domain.Stage {
	if elapsed <= 45 {
		return domain.StageFirstHalf
	}
	return domain.StageSecondHalf
}

func TestFirstHalfGoalTimeWindow(t *testing.T) {
	stats := domain.MatchStats{Home: domain.SideStats{Shots: 6, Corners: 6}}
	for _, tc := range []struct {
		elapsed int
		want    bool
	}{
		{11, false}, {12, true}, {33, true}, {38, true}, {39, false},
	} {
		cands := Classify(surgeInput(tc.elapsed, domain.Score{}, stats))
		got := hasStrategy(cands, domain.StrategyFirstHalf)
		assert.Equal(t, tc.want, got, "elapsed %d", tc.elapsed)
	}
}

func TestLateGameGoalTimeWindow(t *testing.T) {
	stats := domain.MatchStats{Home: domain.SideStats{Shots: 6}}
	for _, tc := range []struct {
		elapsed int
		want    bool
	}{
		{45, false}, {46, true}, {82, true}, {83, false},
	} {
		cands := Classify(surgeInput(tc.elapsed, domain.Score{Home: 1}, stats))
		got := hasStrategy(cands, domain.StrategyLateGame)
		assert.Equal(t, tc.want, got, "elapsed %d", tc.elapsed)
	}
}

func TestSurgeScoreDiffGates(t *testing.T) {
	stats := domain.MatchStats{Home: domain.SideStats{Shots: 6}}

	// First half allows |diff| <= 1.
	cands := Classify(surgeInput(30, domain.Score{Home: 2}, stats))
	assert.False(t, hasStrategy(cands, domain.StrategyFirstHalf))

	// Late game allows |diff| <= 2.
	cands = Classify(surgeInput(70, domain.Score{Home: 2}, stats))
	assert.True(t, hasStrategy(cands, domain.StrategyLateGame))
	cands = Classify(surgeInput(70, domain.Score{Home: 3}, stats))
	assert.False(t, hasStrategy(cands, domain.StrategyLateGame))
}

func TestSurgeConfidenceClamped(t *testing.T) {
	// Stack every positive modifier: the result must not exceed the cap.
	in := surgeInput(70, domain.Score{}, domain.MatchStats{
		Home: domain.SideStats{Shots: 18, ShotsOnTarget: 9, Corners: 11, ExpectedGoals: 2.8},
		Away: domain.SideStats{Shots: 2, ShotsOnTarget: 1},
	})
	in.Event.HomeOdds = 1.40
	in.Surge.TimeframeMinutes = 2

	cands := Classify(in)
	require.True(t, hasStrategy(cands, domain.StrategyLateGame))
	for _, c := range cands {
		assert.LessOrEqual(t, c.Confidence, SurgeMaxConfidence)
		assert.GreaterOrEqual(t, c.Confidence, SurgeMinConfidence)
	}

	// Stack penalties on a weak surge: the floor must hold.
	in = surgeInput(50, domain.Score{}, domain.MatchStats{
		Home: domain.SideStats{Shots: 11, ShotsOnTarget: 1},
	})
	in.Surge.TimeframeMinutes = 11
	cands = Classify(in)
	require.True(t, hasStrategy(cands, domain.StrategyLateGame))
	for _, c := range cands {
		if c.Strategy == domain.StrategyLateGame {
			assert.GreaterOrEqual(t, c.Confidence, SurgeMinConfidence)
		}
	}
}

func TestSurgeMarketNames(t *testing.T) {
	stats := domain.MatchStats{Home: domain.SideStats{Shots: 6}}

	cands := Classify(surgeInput(33, domain.Score{}, stats))
	require.Len(t, cands, 1)
	assert.Equal(t, "1st Half Over 0.5 Goals", cands[0].Market)

	cands = Classify(surgeInput(70, domain.Score{Home: 1, Away: 1}, stats))
	require.True(t, hasStrategy(cands, domain.StrategyLateGame))
	assert.Equal(t, "Over 2.5 Goals", findStrategy(cands, domain.StrategyLateGame).Market)
}

func TestSurgeChainRequiresDetection(t *testing.T) {
	// Lively stats keep every stagnation check out; with the detector quiet
	// the surge chain must not fire either.
	in := surgeInput(33, domain.Score{}, domain.MatchStats{
		Home: domain.SideStats{Shots: 6, ShotsOnTarget: 3, Corners: 4, ExpectedGoals: 0.9},
	})
	in.Surge = detector.Result{}
	assert.Empty(t, Classify(in))
}

func TestSurgeSuppressesStagnationChain(t *testing.T) {
	// Six shots but nothing else registered yet: the absolute-dead check
	// would otherwise fire next to the surge and back the opposite market.
	cands := Classify(surgeInput(33, domain.Score{}, domain.MatchStats{Home: domain.SideStats{Shots: 6}}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyFirstHalf, cands[0].Strategy)

	// Surge detected outside both surge windows: the scan stays silent
	// rather than falling through to a contradictory stagnation read.
	in := surgeInput(40, domain.Score{}, domain.MatchStats{Home: domain.SideStats{Shots: 1}})
	assert.Empty(t, Classify(in))
}

func stagnationInput(elapsed int, score domain.Score, stats domain.MatchStats, collapse detector.Result) Input {
	in := surgeInput(elapsed, score, stats)
	in.Surge = detector.Result{}
	in.Collapse = collapse
	return in
}

func TestStagnationPriorityOrderFirstMatchWins(t *testing.T) {
	// At minute 35, 0-0, stats satisfying both the absolute-dead check
	// (first-half-lock) and the sleepy check: first-half-lock must win.
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 1, Corners: 1, ExpectedGoals: 0.1},
	}
	cands := Classify(stagnationInput(35, domain.Score{}, stats, detector.Result{}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyFirstHalfLock, cands[0].Strategy)
}

func TestSleepyFirstHalfFiresWhenNotDead(t *testing.T) {
	// Corners high enough to break absolute-dead's 3-of-4? No: keep shots and
	// corners below the sleepy thresholds but push xG and SoT over the dead
	// thresholds so only sleepy matches.
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 1, ShotsOnTarget: 1, Corners: 1, ExpectedGoals: 0.3},
		Away: domain.SideStats{Shots: 1, ShotsOnTarget: 1, ExpectedGoals: 0.3},
	}
	cands := Classify(stagnationInput(28, domain.Score{}, stats, detector.Result{}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategySleepyFirstHalf, cands[0].Strategy)
	assert.Equal(t, "1st Half Under 0.5 Goals", cands[0].Market)
}

func TestTacticalStalemateRequiresCollapse(t *testing.T) {
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 5, ShotsOnTarget: 2, Corners: 3, ExpectedGoals: 0.8},
		Away: domain.SideStats{Shots: 4, ShotsOnTarget: 2, Corners: 3, ExpectedGoals: 0.7},
	}
	score := domain.Score{Home: 1, Away: 1}

	cands := Classify(stagnationInput(40, score, stats, detector.Result{}))
	assert.Empty(t, cands)

	collapse := detector.Result{Detected: true, Trigger: detector.TriggerCollapse, Reason: "no meaningful activity for 9m", TimeframeMinutes: 9}
	cands = Classify(stagnationInput(40, score, stats, collapse))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyTacticalStalemate, cands[0].Strategy)
	assert.Equal(t, "1st Half Under 2.5 Goals", cands[0].Market)
}

func TestScorelessStalemateWindow(t *testing.T) {
	stats := domain.MatchStats{
		Home: domain.SideStats{ShotsOnTarget: 1, ExpectedGoals: 0.2, Shots: 8, Corners: 6},
		Away: domain.SideStats{ShotsOnTarget: 1, ExpectedGoals: 0.2, Shots: 7, Corners: 5},
	}
	// Shots and corners are lively so absolute-dead and parked-bus stay out.
	cands := Classify(stagnationInput(60, domain.Score{}, stats, detector.Result{}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyScorelessStalemate, cands[0].Strategy)
	assert.Equal(t, "Under 1.5 Goals", cands[0].Market)

	assert.Empty(t, Classify(stagnationInput(54, domain.Score{}, stats, detector.Result{})))
	assert.Empty(t, Classify(stagnationInput(76, domain.Score{}, stats, detector.Result{})))
}

func TestLateGameLockBeatsParkedBus(t *testing.T) {
	// 1-0 at 70' with a dead game AND a parked leader: lock comes first.
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 1, ShotsOnTarget: 1, Corners: 1, ExpectedGoals: 0.2},
		Away: domain.SideStats{Shots: 3, ShotsOnTarget: 1, Corners: 2, ExpectedGoals: 0.3},
	}
	cands := Classify(stagnationInput(70, domain.Score{Home: 1}, stats, detector.Result{}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyLateGameLock, cands[0].Strategy)
	assert.Equal(t, "Under 1.5 Goals", cands[0].Market)
}

func TestParkedBusMarketAllowsOneMoreGoal(t *testing.T) {
	// Lively overall stats so the lock's absolute-dead check fails, but the
	// leading side itself is parked.
	stats := domain.MatchStats{
		Home: domain.SideStats{Shots: 2, ShotsOnTarget: 1, Corners: 1, ExpectedGoals: 0.4},
		Away: domain.SideStats{Shots: 9, ShotsOnTarget: 4, Corners: 6, ExpectedGoals: 1.1},
	}
	cands := Classify(stagnationInput(72, domain.Score{Home: 2}, stats, detector.Result{}))
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StrategyParkedBus, cands[0].Strategy)
	assert.Equal(t, "Under 3.5 Goals", cands[0].Market)
}

func TestStagnationConfidenceClamped(t *testing.T) {
	// Deepest possible inactivity late on: confidence must stay in bounds.
	stats := domain.MatchStats{}
	collapse := detector.Result{Detected: true, TimeframeMinutes: 11, Reason: "no meaningful activity for 11m"}
	cands := Classify(stagnationInput(78, domain.Score{}, stats, collapse))
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.GreaterOrEqual(t, c.Confidence, StagnationMinConfidence)
		assert.LessOrEqual(t, c.Confidence, StagnationMaxConfidence)
	}
}

func hasStrategy(cands []domain.CandidateSignal, code domain.StrategyCode) bool {
	return findStrategy(cands, code) != nil
}

func findStrategy(cands []domain.CandidateSignal, code domain.StrategyCode) *domain.CandidateSignal {
	for i := range cands {
		if cands[i].Strategy == code {
			return &cands[i]
		}
	}
	return nil
}
