// Package detector implements the two anomaly detector families: the surge
// detector, which flags a sudden increase in activity within a lookback
// window, and the stagnation family, which flags an absolute or relative
// absence of activity. All detectors are pure reads over the snapshot history
// and the current observation.
package detector

import (
	"fmt"
	"math"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// LookbackWindow is how far back the history walk considers snapshots.
const LookbackWindow = 12 * time.Minute

// Trigger names the rule that fired a detection.
type Trigger string

const (
	TriggerCornerSiege Trigger = "CORNER_SIEGE"
	TriggerShotSurge   Trigger = "SHOT_SURGE"
	TriggerSoTThreat   Trigger = "SOT_THREAT"
	TriggerXGSpike     Trigger = "XG_SPIKE"

	TriggerAbsoluteDead Trigger = "ABSOLUTE_DEAD"
	TriggerCollapse     Trigger = "COLLAPSE"
	TriggerParkedBus    Trigger = "PARKED_BUS"
	TriggerStalemate    Trigger = "SCORELESS_STALEMATE"
)

// Deltas holds current-minus-historical metric differences.
type Deltas struct {
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shots_on_target"`
	Corners       int     `json:"corners"`
	ExpectedGoals float64 `json:"expected_goals"`
}

// Result is a transient detection outcome, produced fresh each scan and never
// persisted. Confidence is a seed value set only by the stagnation checks.
type Result struct {
	Detected         bool
	Trigger          Trigger
	Reason           string
	TimeframeMinutes int
	Deltas           Deltas
	Confidence       int
}

// Surge detection thresholds.
const (
	surgeCornerDelta = 3
	surgeShotDelta   = 4
	surgeSoTDelta    = 2
	surgeXGDelta     = 0.4
)

// DetectSurge walks the event's history from newest to oldest looking for a
// burst of activity. Scanning stops as soon as it reaches an entry whose
// recorded score differs from the current score: a goal resets momentum
// tracking. The first satisfied rule wins, in priority order corner siege,
// shot surge / shot-on-target threat, xG spike.
func DetectSurge(history []domain.Snapshot, now time.Time, score domain.Score, stats domain.MatchStats) Result {
	for i := len(history) - 1; i >= 0; i-- {
		snap := history[i]
		if snap.Score != score {
			return Result{}
		}

		age := now.Sub(snap.ObservedAt)
		if age > LookbackWindow {
			break
		}
		minutes := minutesBetween(snap.ObservedAt, now)

		d := Deltas{
			Shots:         stats.Shots() - snap.Stats.Shots(),
			ShotsOnTarget: stats.ShotsOnTarget() - snap.Stats.ShotsOnTarget(),
			Corners:       stats.Corners() - snap.Stats.Corners(),
			ExpectedGoals: stats.ExpectedGoals() - snap.Stats.ExpectedGoals(),
		}

		switch {
		case d.Corners >= surgeCornerDelta:
			return Result{
				Detected:         true,
				Trigger:          TriggerCornerSiege,
				Reason:           fmt.Sprintf("+%d corners in %dm", d.Corners, minutes),
				TimeframeMinutes: minutes,
				Deltas:           d,
			}
		case d.Shots >= surgeShotDelta || d.ShotsOnTarget >= surgeSoTDelta:
			// SoT takes naming priority when both hold.
			trigger := TriggerShotSurge
			reason := fmt.Sprintf("+%d shots in %dm", d.Shots, minutes)
			if d.ShotsOnTarget >= surgeSoTDelta {
				trigger = TriggerSoTThreat
				reason = fmt.Sprintf("+%d shots on target in %dm", d.ShotsOnTarget, minutes)
			}
			return Result{
				Detected:         true,
				Trigger:          trigger,
				Reason:           reason,
				TimeframeMinutes: minutes,
				Deltas:           d,
			}
		case stats.ExpectedGoals() > 0 && d.ExpectedGoals >= surgeXGDelta:
			return Result{
				Detected:         true,
				Trigger:          TriggerXGSpike,
				Reason:           fmt.Sprintf("+%.2f xG in %dm", d.ExpectedGoals, minutes),
				TimeframeMinutes: minutes,
				Deltas:           d,
			}
		}
	}
	return Result{}
}

func minutesBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}
