package strategy

import (
	"fmt"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// Surge family gates and base confidences.
const (
	firstHalfMinMinute = 12
	firstHalfMaxMinute = 38
	firstHalfMaxDiff   = 1
	firstHalfBase      = 60

	lateGameMinMinute = 46
	lateGameMaxMinute = 82
	lateGameMaxDiff   = 2
	lateGameBase      = 50
)

// firstHalfGoal proposes a first-half over when a surge fires early enough in
// a close match.
func firstHalfGoal(in Input) *domain.CandidateSignal {
	if in.Elapsed < firstHalfMinMinute || in.Elapsed > firstHalfMaxMinute {
		return nil
	}
	if in.Event.Score.AbsDiff() > firstHalfMaxDiff {
		return nil
	}

	conf := firstHalfBase
	reasons := []string{in.Surge.Reason}
	delta, mods := surgeModifiers(in, false)
	conf += delta
	reasons = append(reasons, mods...)

	return newCandidate(in, domain.StrategyFirstHalf, firstHalfOverMarket(in.Event.Score), conf, reasons)
}

// lateGameGoal proposes a full-time over for a late surge.
func lateGameGoal(in Input) *domain.CandidateSignal {
	if in.Elapsed < lateGameMinMinute || in.Elapsed > lateGameMaxMinute {
		return nil
	}
	if in.Event.Score.AbsDiff() > lateGameMaxDiff {
		return nil
	}

	conf := lateGameBase
	reasons := []string{in.Surge.Reason}
	delta, mods := surgeModifiers(in, true)
	conf += delta
	reasons = append(reasons, mods...)

	return newCandidate(in, domain.StrategyLateGame, overMarket(in.Event.Score), conf, reasons)
}

// surgeModifiers computes the additive confidence adjustment shared by both
// surge strategies, returning the delta and the human-readable trail.
func surgeModifiers(in Input, lateGame bool) (int, []string) {
	stats := in.Stats
	delta := 0
	var reasons []string

	// Shots on target.
	switch sot := stats.ShotsOnTarget(); {
	case sot >= 6:
		delta += 8
		reasons = append(reasons, fmt.Sprintf("%d shots on target", sot))
	case sot >= 4:
		delta += 5
		reasons = append(reasons, fmt.Sprintf("%d shots on target", sot))
	case sot >= 2:
		delta += 2
	}

	// Total shots.
	switch shots := stats.Shots(); {
	case shots >= 16:
		delta += 5
	case shots >= 12:
		delta += 3
	case shots >= 8:
		delta++
	}

	// Corners.
	switch corners := stats.Corners(); {
	case corners >= 10:
		delta += 4
	case corners >= 7:
		delta += 2
	}

	// Expected goals magnitude.
	switch xg := stats.ExpectedGoals(); {
	case xg >= 2.5:
		delta += 6
		reasons = append(reasons, fmt.Sprintf("%.2f combined xG", xg))
	case xg >= 1.8:
		delta += 4
	case xg >= 1.2:
		delta += 2
	}

	// Shot-accuracy penalty: volume without precision.
	accuracyShots := 8
	if lateGame {
		accuracyShots = 10
	}
	if shots := stats.Shots(); shots >= accuracyShots {
		if ratio := float64(stats.ShotsOnTarget()) / float64(shots); ratio < 0.30 {
			delta -= 6
			reasons = append(reasons, fmt.Sprintf("poor accuracy %.0f%%", ratio*100))
		}
	}

	// xG underperformance: a side has created far more than it scored.
	score := in.Event.Score
	if stats.Home.ExpectedGoals-float64(score.Home) >= 1.2 ||
		stats.Away.ExpectedGoals-float64(score.Away) >= 1.2 {
		delta += 6
		reasons = append(reasons, "xG underperformance")
	}

	// Dominance: one side well ahead on both shots and shots on target.
	shotDiff := stats.Home.Shots - stats.Away.Shots
	sotDiff := stats.Home.ShotsOnTarget - stats.Away.ShotsOnTarget
	homeDominant := shotDiff >= 6 && sotDiff >= 2
	awayDominant := -shotDiff >= 6 && -sotDiff >= 2
	if homeDominant || awayDominant {
		delta += 4
		reasons = append(reasons, "one-sided pressure")
		odds := in.Event.HomeOdds
		if awayDominant {
			odds = in.Event.AwayOdds
		}
		if odds > 0 && odds < favoriteOddsCutoff {
			delta += 3
			reasons = append(reasons, "favorite dominating")
		}
	}

	// Proximity: the triggering anomaly is very recent.
	switch tf := in.Surge.TimeframeMinutes; {
	case tf <= 3:
		delta += 6
	case tf <= 6:
		delta += 3
	}

	if lateGame {
		switch in.Event.Score.AbsDiff() {
		case 0:
			delta += 4
		case 1:
			delta += 2
		}
		if in.Elapsed >= 65 && in.Elapsed <= 78 {
			delta += 4
			reasons = append(reasons, "peak scoring window")
		}
	}

	return delta, reasons
}
