package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// normalizeStage maps the vendor's stage strings onto the domain enum.
func normalizeStage(raw string) domain.Stage {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1ST HALF", "FIRST HALF", "FIRST_HALF", "1H":
		return domain.StageFirstHalf
	case "HALF TIME", "HALFTIME", "HALF_TIME", "HT":
		return domain.StageHalfTime
	case "2ND HALF", "SECOND HALF", "SECOND_HALF", "2H":
		return domain.StageSecondHalf
	case "FINISHED", "ENDED", "FULL TIME", "FT", "AFTER ET", "AFTER PENALTIES":
		return domain.StageFinished
	default:
		return domain.StageUnknown
	}
}

// normalizeEvent converts one vendor event into a domain.LiveEvent. An
// unparseable score yields 0-0 rather than an error; the engine's freshness
// re-check protects against acting on it.
func normalizeEvent(competition string, ev apiEvent, observedAt time.Time) domain.LiveEvent {
	score, err := domain.ParseScore(ev.Score)
	if err != nil {
		score = domain.Score{}
	}
	return domain.LiveEvent{
		ID:          ev.ID,
		Competition: competition,
		HomeTeam:    ev.HomeTeam,
		AwayTeam:    ev.AwayTeam,
		Score:       score,
		Stage:       normalizeStage(ev.Stage),
		Elapsed:     ev.Elapsed,
		HomeOdds:    ev.HomeOdds,
		AwayOdds:    ev.AwayOdds,
		ObservedAt:  observedAt,
	}
}

// normalizeStats folds the vendor's name/value stat rows into a MatchStats.
// Unknown rows are ignored and missing rows leave the zero value, so the
// detectors never see a partial or null metric.
func normalizeStats(rows []apiStatRow) domain.MatchStats {
	var stats domain.MatchStats
	for _, row := range rows {
		switch canonicalStat(row.Name) {
		case "shots":
			stats.Home.Shots = parseInt(row.Home)
			stats.Away.Shots = parseInt(row.Away)
		case "shots_on_target":
			stats.Home.ShotsOnTarget = parseInt(row.Home)
			stats.Away.ShotsOnTarget = parseInt(row.Away)
		case "corners":
			stats.Home.Corners = parseInt(row.Home)
			stats.Away.Corners = parseInt(row.Away)
		case "expected_goals":
			stats.Home.ExpectedGoals = parseFloat(row.Home)
			stats.Away.ExpectedGoals = parseFloat(row.Away)
		case "possession":
			stats.Home.Possession = parsePercent(row.Home)
			stats.Away.Possession = parsePercent(row.Away)
		case "red_cards":
			stats.Home.RedCards = parseInt(row.Home)
			stats.Away.RedCards = parseInt(row.Away)
		}
	}
	return stats
}

// canonicalStat maps the vendor's display names, which vary across sports and
// feed versions, onto stable keys.
func canonicalStat(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shots", "total shots", "shots total":
		return "shots"
	case "shots on target", "shots on goal":
		return "shots_on_target"
	case "corners", "corner kicks":
		return "corners"
	case "expected goals", "expected goals (xg)", "xg":
		return "expected_goals"
	case "possession", "ball possession":
		return "possession"
	case "red cards":
		return "red_cards"
	default:
		return ""
	}
}

// normalizePriorMatches converts the H2H payload, dropping entries whose
// timestamp or score cannot be parsed.
func normalizePriorMatches(matches []apiPriorMatch) []domain.PriorMatch {
	out := make([]domain.PriorMatch, 0, len(matches))
	for _, m := range matches {
		playedAt, err := time.Parse(time.RFC3339, m.PlayedAt)
		if err != nil {
			continue
		}
		score, err := domain.ParseScore(m.Score)
		if err != nil {
			continue
		}
		out = append(out, domain.PriorMatch{
			PlayedAt: playedAt,
			HomeTeam: m.HomeTeam,
			AwayTeam: m.AwayTeam,
			Score:    score,
		})
	}
	return out
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePercent(raw string) int {
	return parseInt(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
}
