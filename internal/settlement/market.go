// Package settlement resolves pending signals to terminal outcomes. Markets
// are matched by name against a small predicate vocabulary; a market whose
// text matches no pattern is left pending and retried on the next cycle.
package settlement

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goalfeed/goalfeed/internal/domain"
)

var totalLineRe = regexp.MustCompile(`\b(over|under)\s+(\d+(?:\.\d+)?)\b`)

// Evaluate applies the market's predicate to the entry score and the final
// record. Markets naming the first half are scored against the half-time
// score instead of the full-time score. An unrecognized market returns
// domain.ErrUnknownMarket.
func Evaluate(market string, entry domain.Score, rec domain.FinalRecord) (domain.SignalStatus, error) {
	m := strings.ToLower(strings.TrimSpace(market))
	if m == "" {
		return domain.StatusPending, fmt.Errorf("settlement: empty market: %w", domain.ErrUnknownMarket)
	}

	score := rec.FinalScore
	if strings.Contains(m, "1st half") || strings.Contains(m, "first half") || strings.Contains(m, "half time") || strings.Contains(m, "half-time") {
		score = rec.HalfTimeScore
	}

	if match := totalLineRe.FindStringSubmatch(m); match != nil {
		line, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return domain.StatusPending, fmt.Errorf("settlement: parse line %q: %w", match[2], domain.ErrUnknownMarket)
		}
		return evaluateTotal(match[1], line, score.Total()), nil
	}

	switch {
	case strings.Contains(m, "btts") || strings.Contains(m, "both teams to score"):
		if score.Home > 0 && score.Away > 0 {
			return domain.StatusWon, nil
		}
		return domain.StatusLost, nil

	case strings.Contains(m, "home") && strings.Contains(m, "score"):
		if score.Home > entry.Home {
			return domain.StatusWon, nil
		}
		return domain.StatusLost, nil

	case strings.Contains(m, "away") && strings.Contains(m, "score"):
		if score.Away > entry.Away {
			return domain.StatusWon, nil
		}
		return domain.StatusLost, nil

	case strings.Contains(m, "draw"):
		if score.Home == score.Away {
			return domain.StatusWon, nil
		}
		return domain.StatusLost, nil
	}

	return domain.StatusPending, fmt.Errorf("settlement: market %q: %w", market, domain.ErrUnknownMarket)
}

// evaluateTotal resolves an over/under goals line. An integer line that lands
// exactly on the total is a push and refunds.
func evaluateTotal(direction string, line float64, total int) domain.SignalStatus {
	if line == math.Trunc(line) && float64(total) == line {
		return domain.StatusRefund
	}

	over := float64(total) > line
	if direction == "over" {
		if over {
			return domain.StatusWon
		}
		return domain.StatusLost
	}
	if over {
		return domain.StatusLost
	}
	return domain.StatusWon
}
