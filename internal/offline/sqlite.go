package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore persists envelopes in a local SQLite file so saved encounters
// survive process restarts without any server available. The envelope is
// stored as a JSON document; the bookkeeping columns exist for querying.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS offline_envelope (
	key              TEXT PRIMARY KEY,
	offline_status   TEXT NOT NULL,
	attempted_submit INTEGER NOT NULL DEFAULT 0,
	saved_at         TEXT NOT NULL,
	data             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_offline_envelope_pending
	ON offline_envelope (attempted_submit, offline_status);
`

// NewSQLiteStore opens (creating if necessary) the envelope database at
// path. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open offline db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init offline schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(ctx context.Context, key string, env *Envelope) error {
	cp := *env
	cp.Key = key
	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("%w: encode envelope: %v", ErrWriteFailed, err)
	}
	attempted := 0
	if cp.AttemptedSubmit {
		attempted = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO offline_envelope (key, offline_status, attempted_submit, saved_at, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			offline_status = excluded.offline_status,
			attempted_submit = excluded.attempted_submit,
			saved_at = excluded.saved_at,
			data = excluded.data`,
		key, cp.OfflineStatus, attempted, cp.SavedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"), string(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, key string) (*Envelope, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM offline_envelope WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM offline_envelope WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete envelope: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM offline_envelope`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count envelopes: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) HasAny(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n > 0, err
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]*Envelope, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM offline_envelope
		WHERE attempted_submit = 1 AND offline_status = $1
		ORDER BY saved_at`, StatusPendingSubmission)
	if err != nil {
		return nil, fmt.Errorf("list pending envelopes: %w", err)
	}
	defer rows.Close()

	var pending []*Envelope
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var env Envelope
		if err := json.Unmarshal([]byte(data), &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		pending = append(pending, &env)
	}
	return pending, rows.Err()
}
