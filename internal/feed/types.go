package feed

// Vendor API payload types. The feed returns events grouped by competition,
// statistics as loosely typed name/value rows, and scores as "H-A" strings.

type apiLiveResponse struct {
	Competitions []apiCompetition `json:"competitions"`
}

type apiCompetition struct {
	Name   string     `json:"name"`
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	ID       string  `json:"id"`
	HomeTeam string  `json:"home_team"`
	AwayTeam string  `json:"away_team"`
	Score    string  `json:"score"`
	Stage    string  `json:"stage"`
	Elapsed  int     `json:"elapsed"`
	HomeOdds float64 `json:"home_odds,omitempty"`
	AwayOdds float64 `json:"away_odds,omitempty"`
}

type apiStatsResponse struct {
	Statistics []apiStatRow `json:"statistics"`
}

// apiStatRow is one named metric with per-side string values, e.g.
// {"name": "Ball Possession", "home": "58%", "away": "42%"}.
type apiStatRow struct {
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

type apiH2HResponse struct {
	Matches []apiPriorMatch `json:"matches"`
}

type apiPriorMatch struct {
	PlayedAt string `json:"played_at"` // RFC 3339
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Score    string `json:"score"`
}

type apiFinalResponse struct {
	EventID       string `json:"event_id"`
	Score         string `json:"score"`
	HalfTimeScore string `json:"half_time_score"`
	Status        string `json:"status"`
}
