// Package corroborate adjusts candidate confidence using a secondary
// historical-form source before emission. A candidate can be rejected
// outright when the teams' scoring profile leaves too little goal potential
// in the current half; otherwise the layer produces a bounded additive
// confidence delta.
package corroborate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

const (
	// historyWindow bounds how far back prior matches are considered.
	historyWindow = 2 * 365 * 24 * time.Hour

	// remainingPotentialFloor rejects candidates when the expected goals
	// left in the current half drop below this.
	remainingPotentialFloor = 0.5

	// maxDelta bounds the confidence adjustment in either direction.
	maxDelta = 15

	// defaultCombinedRate is assumed when no form data is available.
	defaultCombinedRate = 2.5

	// Share of a match's goals expected in each half.
	firstHalfShare  = 0.45
	secondHalfShare = 0.55
)

// Confidence bounds applied after the delta.
const (
	minConfidence = 30
	maxConfidence = 95
)

// Reviewer cross-checks candidates against the head-to-head source.
type Reviewer struct {
	feed   domain.FeedSource
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewer creates a Reviewer reading historical form from feed.
func NewReviewer(feed domain.FeedSource, logger *slog.Logger) *Reviewer {
	return &Reviewer{
		feed:   feed,
		logger: logger.With(slog.String("component", "corroborate")),
		now:    time.Now,
	}
}

// Review adjusts the candidate's confidence in place and reports whether it
// survives. A failure to reach the secondary source degrades gracefully: the
// candidate is kept unadjusted.
func (r *Reviewer) Review(ctx context.Context, cand *domain.CandidateSignal, ev domain.LiveEvent) bool {
	prior, err := r.feed.HeadToHead(ctx, ev.ID)
	if err != nil {
		r.logger.Warn("head-to-head lookup failed, skipping corroboration",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
		return true
	}

	cutoff := r.now().Add(-historyWindow)
	form := summarize(prior, ev, cutoff)

	if remaining := form.remainingPotential(ev); remaining < remainingPotentialFloor {
		r.logger.Debug("candidate rejected: insufficient remaining potential",
			slog.String("event_id", ev.ID),
			slog.String("strategy", string(cand.Strategy)),
			slog.Float64("remaining", remaining),
		)
		return false
	}

	delta := form.confidenceDelta(cand.Strategy.Family())
	if delta != 0 {
		cand.Confidence = clamp(cand.Confidence+delta, minConfidence, maxConfidence)
		cand.Reasons = append(cand.Reasons, fmt.Sprintf("form adjustment %+d", delta))
	}
	return true
}

// formSummary aggregates the bounded prior-match history for one event.
type formSummary struct {
	combinedRate   float64 // home goals/match + away goals/match
	hasForm        bool
	lastMeetingSet bool
	lastMeeting    domain.Score
}

func summarize(prior []domain.PriorMatch, ev domain.LiveEvent, cutoff time.Time) formSummary {
	var (
		homeGoals, awayGoals int
		homeGames, awayGames int
		lastMeetingAt        time.Time
		out                  formSummary
	)

	for _, m := range prior {
		if m.PlayedAt.Before(cutoff) {
			continue
		}
		homeIn := m.Involves(ev.HomeTeam)
		awayIn := m.Involves(ev.AwayTeam)
		if homeIn {
			homeGoals += m.GoalsBy(ev.HomeTeam)
			homeGames++
		}
		if awayIn {
			awayGoals += m.GoalsBy(ev.AwayTeam)
			awayGames++
		}
		if homeIn && awayIn && m.PlayedAt.After(lastMeetingAt) {
			lastMeetingAt = m.PlayedAt
			out.lastMeeting = m.Score
			out.lastMeetingSet = true
		}
	}

	if homeGames > 0 || awayGames > 0 {
		rate := 0.0
		if homeGames > 0 {
			rate += float64(homeGoals) / float64(homeGames)
		}
		if awayGames > 0 {
			rate += float64(awayGoals) / float64(awayGames)
		}
		out.combinedRate = rate
		out.hasForm = true
	} else {
		out.combinedRate = defaultCombinedRate
	}
	return out
}

// remainingPotential estimates the expected goals still to come in the
// current half: the half's share of the combined scoring rate minus the goals
// already attributed to this half.
func (f formSummary) remainingPotential(ev domain.LiveEvent) float64 {
	total := ev.Score.Total()
	if ev.FirstHalf() {
		return f.combinedRate*firstHalfShare - float64(total)
	}

	// No half-time score is available live; estimate the first-half share of
	// the goals scored so far from the same rate.
	estFirstHalf := int(math.Round(f.combinedRate * firstHalfShare))
	if estFirstHalf > total {
		estFirstHalf = total
	}
	return f.combinedRate*secondHalfShare - float64(total-estFirstHalf)
}

// confidenceDelta maps the scoring profile onto a bounded adjustment. The
// sign flips with the family: heavy scorers help goal signals and hurt
// inactivity signals.
func (f formSummary) confidenceDelta(family domain.SignalFamily) int {
	delta := 0
	if f.hasForm {
		switch {
		case f.combinedRate >= 3.2:
			delta += 8
		case f.combinedRate >= 2.6:
			delta += 4
		case f.combinedRate <= 1.8:
			delta -= 8
		case f.combinedRate <= 2.2:
			delta -= 4
		}
	}
	if f.lastMeetingSet {
		switch {
		case f.lastMeeting.Total() >= 3:
			delta += 4
		case f.lastMeeting.Total() <= 1:
			delta -= 4
		}
	}

	if family == domain.FamilyStagnation {
		delta = -delta
	}
	return clamp(delta, -maxDelta, maxDelta)
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
