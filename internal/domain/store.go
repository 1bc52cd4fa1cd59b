package domain

import (
	"context"
	"time"
)

// SignalStore is the system of record for emitted signals. The engine only
// appends; settlement requests exactly one update per signal.
type SignalStore interface {
	// Append persists a new signal. The signal must carry an ID and
	// StatusPending.
	Append(ctx context.Context, sig *Signal) error

	// GetByID returns the signal with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Signal, error)

	// ListByStatus returns signals with the given status, newest first.
	// A limit of 0 means no limit.
	ListByStatus(ctx context.Context, status SignalStatus, limit int) ([]Signal, error)

	// Settle transitions a PENDING signal to a terminal status, recording the
	// final score and settlement time.
	Settle(ctx context.Context, id string, status SignalStatus, final Score, settledAt time.Time) error

	// CountToday returns how many signals exist for the (event, strategy)
	// pair on the UTC date of day.
	CountToday(ctx context.Context, eventID string, strategy StrategyCode, day time.Time) (int, error)
}

// FeedSource is the upstream live-data vendor. Implementations return
// (nil, nil) when the vendor has no payload for the event, which callers
// treat as "skip this event for the current cycle".
type FeedSource interface {
	LiveEvents(ctx context.Context) ([]LiveEvent, error)
	EventStatistics(ctx context.Context, eventID string) (*MatchStats, error)
	HeadToHead(ctx context.Context, eventID string) ([]PriorMatch, error)
	FinalRecord(ctx context.Context, eventID string) (*FinalRecord, error)
}

// SignalBus fans emitted signals out to external consumers. Delivery is
// best-effort: callers log failures and move on.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}
