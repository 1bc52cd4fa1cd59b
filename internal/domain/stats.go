package domain

// SideStats holds one team's normalized in-play statistics. All fields default
// to zero when the vendor payload omits them, so consumers never null-check.
type SideStats struct {
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shots_on_target"`
	Corners       int     `json:"corners"`
	ExpectedGoals float64 `json:"expected_goals"`
	Possession    int     `json:"possession"` // percent
	RedCards      int     `json:"red_cards"`
}

// MatchStats is the normalized statistics snapshot for both sides of a match.
type MatchStats struct {
	Home SideStats `json:"home"`
	Away SideStats `json:"away"`
}

// Shots returns the combined shot count.
func (m MatchStats) Shots() int {
	return m.Home.Shots + m.Away.Shots
}

// ShotsOnTarget returns the combined on-target shot count.
func (m MatchStats) ShotsOnTarget() int {
	return m.Home.ShotsOnTarget + m.Away.ShotsOnTarget
}

// Corners returns the combined corner count.
func (m MatchStats) Corners() int {
	return m.Home.Corners + m.Away.Corners
}

// ExpectedGoals returns the combined expected-goals value.
func (m MatchStats) ExpectedGoals() float64 {
	return m.Home.ExpectedGoals + m.Away.ExpectedGoals
}

// Side returns the home side when home is true, otherwise the away side.
func (m MatchStats) Side(home bool) SideStats {
	if home {
		return m.Home
	}
	return m.Away
}
