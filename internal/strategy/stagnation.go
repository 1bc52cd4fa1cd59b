package strategy

import (
	"github.com/goalfeed/goalfeed/internal/detector"
	"github.com/goalfeed/goalfeed/internal/domain"
)

// firstHalfLock: a goalless first half that is statistically dead late in the
// half. Backs no goal before the break.
func firstHalfLock(in Input) *domain.CandidateSignal {
	if in.Elapsed < 30 || in.Elapsed > 42 || in.Event.Score.Total() != 0 {
		return nil
	}
	dead := detector.DetectAbsoluteDead(in.Stats, in.Elapsed, true)
	if !dead.Detected {
		return nil
	}

	conf := dead.Confidence
	reasons := []string{dead.Reason}
	if in.Elapsed >= 38 {
		conf += 5
		reasons = append(reasons, "close to half-time")
	}
	if in.Collapse.Detected {
		conf += 4
		reasons = append(reasons, in.Collapse.Reason)
	}
	return newCandidate(in, domain.StrategyFirstHalfLock, firstHalfUnderMarket(0), conf, reasons)
}

// sleepyFirstHalf: almost no attacking output at all in a goalless first half.
func sleepyFirstHalf(in Input) *domain.CandidateSignal {
	if in.Elapsed < 25 || in.Elapsed > 38 || in.Event.Score.Total() != 0 {
		return nil
	}
	if in.Stats.Shots() >= 3 || in.Stats.Corners() >= 2 {
		return nil
	}

	conf := 55
	reasons := []string{"virtually no attacking output"}
	if in.Elapsed >= 34 {
		conf += 4
	}
	return newCandidate(in, domain.StrategySleepyFirstHalf, firstHalfUnderMarket(0), conf, reasons)
}

// tacticalStalemate: a level match where activity has collapsed near the end
// of the first half.
func tacticalStalemate(in Input) *domain.CandidateSignal {
	if in.Elapsed < 35 || in.Elapsed > 43 {
		return nil
	}
	score := in.Event.Score
	levelAt := score.Total() == 0 || (score.Home == 1 && score.Away == 1)
	if !levelAt || !in.Collapse.Detected {
		return nil
	}

	conf := 50
	reasons := []string{in.Collapse.Reason}
	if in.Collapse.TimeframeMinutes >= 9 {
		conf += 5
	}
	if in.Elapsed >= 40 {
		conf += 3
	}
	return newCandidate(in, domain.StrategyTacticalStalemate, firstHalfUnderMarket(score.Total()), conf, reasons)
}

// scorelessStalemate: a 0-0 deep into the second half with nothing suggesting
// goals. Backs at most one goal in the match.
func scorelessStalemate(in Input) *domain.CandidateSignal {
	if in.Elapsed < 55 || in.Elapsed > 75 {
		return nil
	}
	res := detector.DetectScorelessStalemate(in.Stats, in.Event.Score)
	if !res.Detected {
		return nil
	}

	conf := res.Confidence
	reasons := []string{res.Reason}
	if in.Elapsed >= 65 {
		conf += 4
	}
	return newCandidate(in, domain.StrategyScorelessStalemate, underMarket(1), conf, reasons)
}

// lateGameLock: a close match dying down late on. Backs no further goals.
func lateGameLock(in Input) *domain.CandidateSignal {
	if in.Elapsed < 65 || in.Elapsed > 80 {
		return nil
	}
	score := in.Event.Score
	if score.AbsDiff() > 1 {
		return nil
	}
	dead := detector.DetectAbsoluteDead(in.Stats, in.Elapsed, false)
	if !dead.Detected && !in.Collapse.Detected {
		return nil
	}

	conf := 55
	var reasons []string
	if dead.Detected {
		conf = dead.Confidence
		reasons = append(reasons, dead.Reason)
	}
	if in.Collapse.Detected {
		reasons = append(reasons, in.Collapse.Reason)
		if dead.Detected {
			conf += 5
		}
	}
	return newCandidate(in, domain.StrategyLateGameLock, underMarket(score.Total()), conf, reasons)
}

// parkedBus: a narrow leader protecting the result instead of attacking.
// Allows one more goal on the total.
func parkedBus(in Input) *domain.CandidateSignal {
	if in.Elapsed < 60 || in.Elapsed > 82 {
		return nil
	}
	res := detector.DetectParkedBus(in.Stats, in.Event.Score, in.Elapsed)
	if !res.Detected {
		return nil
	}

	conf := res.Confidence
	reasons := []string{res.Reason}
	if in.Collapse.Detected {
		conf += 3
		reasons = append(reasons, in.Collapse.Reason)
	}
	return newCandidate(in, domain.StrategyParkedBus, underMarket(in.Event.Score.Total()+1), conf, reasons)
}
