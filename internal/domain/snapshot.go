package domain

import "time"

// Snapshot is one timestamped observation of an event's statistics and score.
// Snapshots are immutable once recorded.
type Snapshot struct {
	EventID    string     `json:"event_id"`
	ObservedAt time.Time  `json:"observed_at"`
	Score      Score      `json:"score"`
	Stats      MatchStats `json:"stats"`
}
