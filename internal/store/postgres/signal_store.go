package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// SignalStore implements domain.SignalStore using PostgreSQL.
type SignalStore struct {
	pool *pgxpool.Pool
}

// NewSignalStore creates a SignalStore backed by the given connection pool.
func NewSignalStore(pool *pgxpool.Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Append inserts a new signal.
func (s *SignalStore) Append(ctx context.Context, sig *domain.Signal) error {
	if sig == nil || sig.ID == "" {
		return domain.ErrInvalidInput
	}

	statsJSON, err := json.Marshal(sig.Stats)
	if err != nil {
		return fmt.Errorf("postgres: marshal stats for %s: %w", sig.ID, err)
	}

	const query = `
		INSERT INTO signals (
			id, event_id, competition, home_team, away_team,
			strategy, market, entry_home, entry_away, entry_minute,
			confidence, reasons, stats, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15
		)`

	_, err = s.pool.Exec(ctx, query,
		sig.ID, sig.EventID, sig.Competition, sig.HomeTeam, sig.AwayTeam,
		string(sig.Strategy), sig.Market, sig.EntryScore.Home, sig.EntryScore.Away, sig.EntryMinute,
		sig.Confidence, sig.Reasons, statsJSON, string(sig.Status), sig.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append signal %s: %w", sig.ID, err)
	}
	return nil
}

// GetByID returns the signal with the given ID, or domain.ErrNotFound.
func (s *SignalStore) GetByID(ctx context.Context, id string) (*domain.Signal, error) {
	const query = `SELECT ` + signalSelectCols + ` FROM signals WHERE id = $1`

	sig, err := scanSignal(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get signal %s: %w", id, err)
	}
	return sig, nil
}

// ListByStatus returns signals with the given status, newest first.
func (s *SignalStore) ListByStatus(ctx context.Context, status domain.SignalStatus, limit int) ([]domain.Signal, error) {
	query := `SELECT ` + signalSelectCols + ` FROM signals WHERE status = $1 ORDER BY created_at DESC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list signals by status %s: %w", status, err)
	}
	defer rows.Close()

	var out []domain.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan signal: %w", err)
		}
		out = append(out, *sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate signals: %w", err)
	}
	return out, nil
}

// Settle transitions a signal to a terminal status.
func (s *SignalStore) Settle(ctx context.Context, id string, status domain.SignalStatus, final domain.Score, settledAt time.Time) error {
	const query = `
		UPDATE signals
		SET status = $1, final_home = $2, final_away = $3, settled_at = $4
		WHERE id = $5`

	tag, err := s.pool.Exec(ctx, query, string(status), final.Home, final.Away, settledAt, id)
	if err != nil {
		return fmt.Errorf("postgres: settle signal %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountToday counts signals for the (event, strategy) pair created on the UTC
// date of day.
func (s *SignalStore) CountToday(ctx context.Context, eventID string, strategy domain.StrategyCode, day time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM signals
		WHERE event_id = $1 AND strategy = $2
		  AND created_at >= $3 AND created_at < $4`

	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	var n int
	if err := s.pool.QueryRow(ctx, query, eventID, string(strategy), start, end).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count signals for %s/%s: %w", eventID, strategy, err)
	}
	return n, nil
}

const signalSelectCols = `id, event_id, competition, home_team, away_team,
	strategy, market, entry_home, entry_away, entry_minute,
	confidence, reasons, stats, status, created_at,
	final_home, final_away, settled_at`

func scanSignal(scanner interface{ Scan(dest ...any) error }) (*domain.Signal, error) {
	var sig domain.Signal
	var strategy, status string
	var statsJSON []byte
	var finalHome, finalAway *int
	var settledAt *time.Time

	err := scanner.Scan(
		&sig.ID, &sig.EventID, &sig.Competition, &sig.HomeTeam, &sig.AwayTeam,
		&strategy, &sig.Market, &sig.EntryScore.Home, &sig.EntryScore.Away, &sig.EntryMinute,
		&sig.Confidence, &sig.Reasons, &statsJSON, &status, &sig.CreatedAt,
		&finalHome, &finalAway, &settledAt,
	)
	if err != nil {
		return nil, err
	}

	sig.Strategy = domain.StrategyCode(strategy)
	sig.Status = domain.SignalStatus(status)
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &sig.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	if finalHome != nil && finalAway != nil {
		sig.FinalScore = &domain.Score{Home: *finalHome, Away: *finalAway}
	}
	sig.SettledAt = settledAt
	return &sig, nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*SignalStore)(nil)
