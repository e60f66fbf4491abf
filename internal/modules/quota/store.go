package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles extraction_quota persistence.
type Store struct {
	db        *pgxpool.Pool
	allowance int
	now       func() time.Time
}

// NewStore returns a Store backed by the given connection pool. allowance <= 0 uses DefaultAllowance.
func NewStore(db *pgxpool.Pool, allowance int) *Store {
	if allowance <= 0 {
		allowance = DefaultAllowance
	}
	return &Store{db: db, allowance: allowance, now: time.Now}
}

func (s *Store) month() string {
	return s.now().UTC().Format("2006-01")
}

// Consume atomically checks the monthly quota and deducts one call.
// The counter resets to the allowance when last_reset_month is behind the current month.
// Returns ErrExhausted when 0 rows are updated (quota exhausted or caller absent).
func (s *Store) Consume(ctx context.Context, uid string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE extraction_quota SET
			calls_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE calls_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR calls_remaining > 0)
	`, s.month(), s.allowance, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

// EnsureCaller inserts a row for uid with the full allowance; existing rows are left alone.
func (s *Store) EnsureCaller(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO extraction_quota (uid, calls_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, s.allowance, s.month())
	return err
}

// Remaining reports calls left this month; unknown callers have the full allowance.
func (s *Store) Remaining(ctx context.Context, uid string) (int, error) {
	var remaining int
	var month string
	err := s.db.QueryRow(ctx,
		`SELECT calls_remaining, last_reset_month FROM extraction_quota WHERE uid = $1`, uid,
	).Scan(&remaining, &month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.allowance, nil
		}
		return 0, err
	}
	if month < s.month() {
		return s.allowance, nil
	}
	return remaining, nil
}
