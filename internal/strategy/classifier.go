// Package strategy converts detector output into market-scoped candidate
// signals. Each family is an ordered chain of rules evaluated first-match-wins;
// the order is a first-class, tested property.
package strategy

import (
	"fmt"

	"github.com/goalfeed/goalfeed/internal/detector"
	"github.com/goalfeed/goalfeed/internal/domain"
)

// Confidence bounds per family.
const (
	SurgeMinConfidence      = 30
	SurgeMaxConfidence      = 95
	StagnationMinConfidence = 45
	StagnationMaxConfidence = 95
)

// favoriteOddsCutoff marks a pre-match favorite for the dominance boost.
const favoriteOddsCutoff = 1.60

// Input carries everything a rule needs: the live event, the normalized
// statistics, and the fresh detector results for both polarities.
type Input struct {
	Event    domain.LiveEvent
	Elapsed  int
	Stats    domain.MatchStats
	Surge    detector.Result
	Collapse detector.Result
}

// rule is one predicate->candidate pair. Returning nil means "no match,
// try the next rule".
type rule func(Input) *domain.CandidateSignal

// The two chains. Order is semantic: the first matching rule wins and the
// rest are never evaluated.
var (
	surgeRules = []rule{
		firstHalfGoal,
		lateGameGoal,
	}
	stagnationRules = []rule{
		firstHalfLock,
		sleepyFirstHalf,
		tacticalStalemate,
		scorelessStalemate,
		lateGameLock,
		parkedBus,
	}
)

// Classify runs the family chains and returns at most one candidate. A
// detected surge is direct evidence of activity, which contradicts every
// stagnation read of the same scan, so the stagnation chain only runs when
// the surge detector stayed quiet. One scan can therefore never back both an
// over and an under for the same event.
func Classify(in Input) []domain.CandidateSignal {
	if in.Surge.Detected {
		if cand := firstMatch(surgeRules, in); cand != nil {
			return []domain.CandidateSignal{*cand}
		}
		return nil
	}
	if cand := firstMatch(stagnationRules, in); cand != nil {
		return []domain.CandidateSignal{*cand}
	}
	return nil
}

func firstMatch(chain []rule, in Input) *domain.CandidateSignal {
	for _, r := range chain {
		if cand := r(in); cand != nil {
			return cand
		}
	}
	return nil
}

func newCandidate(in Input, code domain.StrategyCode, market string, confidence int, reasons []string) *domain.CandidateSignal {
	lo, hi := StagnationMinConfidence, StagnationMaxConfidence
	if code.Family() == domain.FamilySurge {
		lo, hi = SurgeMinConfidence, SurgeMaxConfidence
	}
	return &domain.CandidateSignal{
		EventID:     in.Event.ID,
		Competition: in.Event.Competition,
		HomeTeam:    in.Event.HomeTeam,
		AwayTeam:    in.Event.AwayTeam,
		Strategy:    code,
		Market:      market,
		EntryScore:  in.Event.Score,
		EntryMinute: in.Elapsed,
		Confidence:  clamp(confidence, lo, hi),
		Reasons:     reasons,
		Stats:       in.Stats,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func overMarket(score domain.Score) string {
	return fmt.Sprintf("Over %d.5 Goals", score.Total())
}

func underMarket(total int) string {
	return fmt.Sprintf("Under %d.5 Goals", total)
}

func firstHalfOverMarket(score domain.Score) string {
	return fmt.Sprintf("1st Half Over %d.5 Goals", score.Total())
}

func firstHalfUnderMarket(total int) string {
	return fmt.Sprintf("1st Half Under %d.5 Goals", total)
}
