package seenstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	// Postgres driver, registered for database/sql.
	_ "github.com/lib/pq"

	"github.com/prairielabs/trackwatch/internal/domain/dedupe"
)

const seenSchema = `
CREATE TABLE IF NOT EXISTS seen_results (
	athlete_id TEXT NOT NULL,
	result_key TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (athlete_id, result_key)
)`

// PostgresStore keeps the seen-set in a two-column table. Lookups hit an
// in-memory mirror hydrated by Load; MarkSeen buffers rows that Persist
// inserts inside one transaction with conflict-ignore semantics.
type PostgresStore struct {
	*dedupe.InMemorySeenSet
	db *sql.DB

	mu      sync.Mutex
	pending [][2]string // (athlete_id, result_key)
}

// NewPostgresStore creates a Postgres-backed seen-set on an existing pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		InMemorySeenSet: dedupe.NewInMemorySeenSet(),
		db:              db,
		pending:         nil,
	}
}

// EnsureSchema creates the backing table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, seenSchema); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return nil
}

// MarkSeen records the key in memory and buffers the row for Persist.
func (s *PostgresStore) MarkSeen(ctx context.Context, athleteID, key string) {
	if s.Seen(ctx, athleteID, key) {
		return
	}
	s.InMemorySeenSet.MarkSeen(ctx, athleteID, key)
	s.mu.Lock()
	s.pending = append(s.pending, [2]string{athleteID, key})
	s.mu.Unlock()
}

// Load hydrates the in-memory mirror from the table.
func (s *PostgresStore) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT athlete_id, result_key FROM seen_results`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer rows.Close()

	state := make(map[string][]string)
	for rows.Next() {
		var athleteID, key string
		if err := rows.Scan(&athleteID, &key); err != nil {
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
		state[athleteID] = append(state[athleteID], key)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	s.Restore(state)
	return nil
}

// Persist inserts buffered rows in one transaction. The buffer is cleared
// only after commit, so a failed persist retries the same rows.
func (s *PostgresStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO seen_results (athlete_id, result_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer stmt.Close()

	for _, row := range s.pending {
		if _, err := stmt.ExecContext(ctx, row[0], row[1]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.pending = nil
	return nil
}
