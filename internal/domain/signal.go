package domain

import "time"

// SignalStatus is the lifecycle state of a persisted signal. A signal is
// created PENDING and transitions exactly once to a terminal value.
type SignalStatus string

const (
	StatusPending SignalStatus = "PENDING"
	StatusWon     SignalStatus = "WON"
	StatusLost    SignalStatus = "LOST"
	StatusRefund  SignalStatus = "REFUND"
)

// Terminal reports whether the status is a settled end state.
func (s SignalStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusRefund
}

// StrategyCode identifies the classification rule that produced a signal.
type StrategyCode string

const (
	// Surge family.
	StrategyFirstHalf StrategyCode = "FIRST_HALF"
	StrategyLateGame  StrategyCode = "LATE_GAME"

	// Stagnation family.
	StrategyFirstHalfLock      StrategyCode = "FIRST_HALF_LOCK"
	StrategySleepyFirstHalf    StrategyCode = "SLEEPY_FIRST_HALF"
	StrategyTacticalStalemate  StrategyCode = "TACTICAL_STALEMATE"
	StrategyScorelessStalemate StrategyCode = "SCORELESS_STALEMATE"
	StrategyLateGameLock       StrategyCode = "LATE_GAME_LOCK"
	StrategyParkedBus          StrategyCode = "PARKED_BUS"
)

// SignalFamily groups strategies by anomaly polarity.
type SignalFamily string

const (
	FamilySurge      SignalFamily = "SURGE"
	FamilyStagnation SignalFamily = "STAGNATION"
)

// Family returns the anomaly family a strategy belongs to.
func (c StrategyCode) Family() SignalFamily {
	switch c {
	case StrategyFirstHalf, StrategyLateGame:
		return FamilySurge
	default:
		return FamilyStagnation
	}
}

// CandidateSignal is a provisional, unpersisted detection. It lives only
// within one scan iteration until it is either discarded by a gate or
// promoted to a Signal.
type CandidateSignal struct {
	EventID     string       `json:"event_id"`
	Competition string       `json:"competition"`
	HomeTeam    string       `json:"home_team"`
	AwayTeam    string       `json:"away_team"`
	Strategy    StrategyCode `json:"strategy"`
	Market      string       `json:"market"`
	EntryScore  Score        `json:"entry_score"`
	EntryMinute int          `json:"entry_minute"`
	Confidence  int          `json:"confidence"`
	Reasons     []string     `json:"reasons"`
	Stats       MatchStats   `json:"stats"`
}

// Signal is an emitted, durably stored signal with a lifecycle status.
type Signal struct {
	CandidateSignal

	ID         string       `json:"id"`
	Status     SignalStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	FinalScore *Score       `json:"final_score,omitempty"`
	SettledAt  *time.Time   `json:"settled_at,omitempty"`
}
