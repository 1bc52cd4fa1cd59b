package detector

import (
	"fmt"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// Collapse thresholds: a history entry counts as "nothing happened since"
// when every delta stays at or under these and enough time has passed.
const (
	collapseShotDelta   = 1
	collapseSoTDelta    = 0
	collapseCornerDelta = 1
	collapseXGDelta     = 0.1
	collapseMinMinutes  = 6
)

// DetectAbsoluteDead counts how many activity metrics sit at or below their
// dead thresholds (halved-ish during the first half) and fires when at least
// three of four hold. The confidence seed starts at 50 and grows with the
// depth of the inactivity and lateness in the half.
func DetectAbsoluteDead(stats domain.MatchStats, elapsed int, firstHalf bool) Result {
	shotsMax, sotMax, cornersMax, xgMax := 6, 2, 4, 0.6
	if firstHalf {
		shotsMax, sotMax, cornersMax, xgMax = 4, 1, 2, 0.4
	}

	dead := 0
	if stats.Shots() <= shotsMax {
		dead++
	}
	if stats.ShotsOnTarget() <= sotMax {
		dead++
	}
	if stats.Corners() <= cornersMax {
		dead++
	}
	if stats.ExpectedGoals() <= xgMax {
		dead++
	}
	if dead < 3 {
		return Result{}
	}

	conf := 50
	switch {
	case stats.ExpectedGoals() <= 0.2:
		conf += 8
	case stats.ExpectedGoals() <= 0.4:
		conf += 4
	}
	switch stats.ShotsOnTarget() {
	case 0:
		conf += 8
	case 1:
		conf += 4
	}
	switch {
	case stats.Shots() <= 2:
		conf += 6
	case stats.Shots() <= 4:
		conf += 3
	}
	conf += latenessBonus(elapsed, firstHalf)

	return Result{
		Detected:   true,
		Trigger:    TriggerAbsoluteDead,
		Reason:     fmt.Sprintf("%d/4 metrics dead (%d shots, %d SoT, %d corners, %.2f xG)", dead, stats.Shots(), stats.ShotsOnTarget(), stats.Corners(), stats.ExpectedGoals()),
		Confidence: conf,
	}
}

func latenessBonus(elapsed int, firstHalf bool) int {
	if firstHalf {
		switch {
		case elapsed >= 35:
			return 5
		case elapsed >= 30:
			return 2
		}
		return 0
	}
	switch {
	case elapsed >= 75:
		return 5
	case elapsed >= 65:
		return 2
	}
	return 0
}

// DetectCollapse walks the history like the surge detector but looks for the
// absence of change: the first in-window entry where every metric delta stays
// within the collapse thresholds and at least six minutes have passed since
// that entry. A score change still stops the walk.
func DetectCollapse(history []domain.Snapshot, now time.Time, score domain.Score, stats domain.MatchStats) Result {
	for i := len(history) - 1; i >= 0; i-- {
		snap := history[i]
		if snap.Score != score {
			return Result{}
		}

		age := now.Sub(snap.ObservedAt)
		if age > LookbackWindow {
			break
		}
		// The quiet spell must actually have lasted six minutes; the rounded
		// minute count is only for reporting.
		if age < collapseMinMinutes*time.Minute {
			continue
		}
		minutes := minutesBetween(snap.ObservedAt, now)

		d := Deltas{
			Shots:         stats.Shots() - snap.Stats.Shots(),
			ShotsOnTarget: stats.ShotsOnTarget() - snap.Stats.ShotsOnTarget(),
			Corners:       stats.Corners() - snap.Stats.Corners(),
			ExpectedGoals: stats.ExpectedGoals() - snap.Stats.ExpectedGoals(),
		}
		if d.Shots <= collapseShotDelta &&
			d.ShotsOnTarget <= collapseSoTDelta &&
			d.Corners <= collapseCornerDelta &&
			d.ExpectedGoals <= collapseXGDelta {
			return Result{
				Detected:         true,
				Trigger:          TriggerCollapse,
				Reason:           fmt.Sprintf("no meaningful activity for %dm", minutes),
				TimeframeMinutes: minutes,
				Deltas:           d,
			}
		}
	}
	return Result{}
}

// Parked-bus parameters: expected shots per elapsed minute for the leading
// side, and the fraction below which the lead is considered parked.
const (
	parkedBusShotsPerMin = 0.08
	parkedBusFloor       = 0.5
)

// DetectParkedBus fires when a side leading by one or two goals has produced
// fewer than half of its expected-shots baseline for the elapsed time.
func DetectParkedBus(stats domain.MatchStats, score domain.Score, elapsed int) Result {
	diff := score.AbsDiff()
	if diff < 1 || diff > 2 {
		return Result{}
	}

	leaderHome := score.Diff() > 0
	leadShots := stats.Side(leaderHome).Shots
	baseline := parkedBusShotsPerMin * float64(elapsed)
	if baseline <= 0 || float64(leadShots) >= parkedBusFloor*baseline {
		return Result{}
	}

	conf := 55
	if float64(leadShots) < 0.25*baseline {
		conf += 8
	}
	if elapsed >= 70 {
		conf += 4
	}

	side := "home"
	if !leaderHome {
		side = "away"
	}
	return Result{
		Detected:   true,
		Trigger:    TriggerParkedBus,
		Reason:     fmt.Sprintf("leading %s side has %d shots vs %.1f expected", side, leadShots, baseline),
		Confidence: conf,
	}
}

// Scoreless-stalemate thresholds on combined totals.
const (
	stalemateXGMax  = 0.8
	stalemateSoTMax = 4
)

// DetectScorelessStalemate fires for a goalless match whose combined expected
// goals and shots on target both sit below the stalemate thresholds.
func DetectScorelessStalemate(stats domain.MatchStats, score domain.Score) Result {
	if score.Total() != 0 {
		return Result{}
	}
	if stats.ExpectedGoals() >= stalemateXGMax || stats.ShotsOnTarget() >= stalemateSoTMax {
		return Result{}
	}

	conf := 52
	if stats.ExpectedGoals() < 0.4 {
		conf += 6
	}
	if stats.ShotsOnTarget() <= 1 {
		conf += 5
	}
	return Result{
		Detected:   true,
		Trigger:    TriggerStalemate,
		Reason:     fmt.Sprintf("0-0 with %.2f xG and %d SoT", stats.ExpectedGoals(), stats.ShotsOnTarget()),
		Confidence: conf,
	}
}
