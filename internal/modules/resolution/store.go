// README: Resolution store backed by PostgreSQL.
package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound is returned by Get for an unknown id.
var ErrRecordNotFound = errors.New("resolution record not found")

// Store persists successful resolutions. It implements Recorder.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, res *Result) error {
	place, err := json.Marshal(res.Place)
	if err != nil {
		return fmt.Errorf("encode place: %w", err)
	}
	candidates, err := json.Marshal(res.Candidates)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	tried := res.Tried
	if tried == nil {
		tried = []string{}
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO resolutions (
			id, query, place, candidates, attempts, tried, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(),
		res.Query,
		place,
		candidates,
		res.Attempts,
		tried,
		time.Now().UTC(),
	)
	return err
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id::text, query, place, candidates, attempts, tried, created_at
		FROM resolutions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id::text, query, place, candidates, attempts, tried, created_at
		FROM resolutions
		WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec        Record
		place      []byte
		candidates []byte
	)
	if err := row.Scan(&rec.ID, &rec.Query, &place, &candidates, &rec.Attempts, &rec.Tried, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(place, &rec.Place); err != nil {
		return nil, fmt.Errorf("decode place: %w", err)
	}
	if err := json.Unmarshal(candidates, &rec.Candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return &rec, nil
}
