package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stage describes where in the match timeline an event currently is.
type Stage string

const (
	StageFirstHalf  Stage = "FIRST_HALF"
	StageHalfTime   Stage = "HALF_TIME"
	StageSecondHalf Stage = "SECOND_HALF"
	StageFinished   Stage = "FINISHED"
	StageUnknown    Stage = "UNKNOWN"
)

// Score is a home/away goal tuple.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Total returns the combined goal count.
func (s Score) Total() int {
	return s.Home + s.Away
}

// Diff returns home goals minus away goals.
func (s Score) Diff() int {
	return s.Home - s.Away
}

// AbsDiff returns the absolute goal difference.
func (s Score) AbsDiff() int {
	d := s.Diff()
	if d < 0 {
		return -d
	}
	return d
}

// String renders the score as "H-A".
func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// ParseScore parses a "H-A" string back into a Score.
func ParseScore(raw string) (Score, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return Score{}, fmt.Errorf("domain: malformed score %q", raw)
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Score{}, fmt.Errorf("domain: malformed score %q: %w", raw, err)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Score{}, fmt.Errorf("domain: malformed score %q: %w", raw, err)
	}
	return Score{Home: home, Away: away}, nil
}

// LiveEvent is one in-play fixture as observed on a single feed poll.
type LiveEvent struct {
	ID          string    `json:"id"`
	Competition string    `json:"competition"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Score       Score     `json:"score"`
	Stage       Stage     `json:"stage"`
	Elapsed     int       `json:"elapsed"` // minutes played
	HomeOdds    float64   `json:"home_odds,omitempty"` // pre-match decimal odds, 0 = unknown
	AwayOdds    float64   `json:"away_odds,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// InPlay reports whether the clock is running (first or second half).
func (e LiveEvent) InPlay() bool {
	return e.Stage == StageFirstHalf || e.Stage == StageSecondHalf
}

// FirstHalf reports whether the event is in its first half.
func (e LiveEvent) FirstHalf() bool {
	return e.Stage == StageFirstHalf
}

// PriorMatch is one historical meeting or recent-form match for a participant.
type PriorMatch struct {
	PlayedAt time.Time `json:"played_at"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Score    Score     `json:"score"`
}

// Involves reports whether the given team played in this match.
func (m PriorMatch) Involves(team string) bool {
	return strings.EqualFold(m.HomeTeam, team) || strings.EqualFold(m.AwayTeam, team)
}

// GoalsBy returns the goals scored by the given team, or 0 if it did not play.
func (m PriorMatch) GoalsBy(team string) int {
	switch {
	case strings.EqualFold(m.HomeTeam, team):
		return m.Score.Home
	case strings.EqualFold(m.AwayTeam, team):
		return m.Score.Away
	default:
		return 0
	}
}

// FinalRecord is the authoritative final state of a fixture used at settlement.
type FinalRecord struct {
	EventID       string `json:"event_id"`
	FinalScore    Score  `json:"final_score"`
	HalfTimeScore Score  `json:"half_time_score"`
	Finished      bool   `json:"finished"`
}
