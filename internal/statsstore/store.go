// Package statsstore persists per-sentence decoding statistics to
// SQLite, for offline comparison across decoder runs. Optional: a
// Manager never requires one.
package statsstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sentence_runs (
	id            TEXT PRIMARY KEY,
	discarded     INTEGER NOT NULL,
	recombined    INTEGER NOT NULL,
	pruned        INTEGER NOT NULL,
	best_score    REAL NOT NULL,
	stack_count   INTEGER NOT NULL,
	deadline_hit  INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);
`

// Store manages a single SQLite database of sentence-run records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// runs its migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Record is one persisted sentence-run.
type Record struct {
	ID          string
	Discarded   int
	Recombined  int
	Pruned      int
	BestScore   float64
	StackCount  int
	DeadlineHit bool
}

// Insert persists one sentence-run record, stamped with now.
func (s *Store) Insert(r Record, now time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sentence_runs (id, discarded, recombined, pruned, best_score, stack_count, deadline_hit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Discarded, r.Recombined, r.Pruned, r.BestScore, r.StackCount, boolToInt(r.DeadlineHit), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert sentence run %s: %w", r.ID, err)
	}
	return nil
}

// ByID fetches one sentence-run record by id, or sql.ErrNoRows if absent.
func (s *Store) ByID(id string) (Record, error) {
	var r Record
	var deadlineHit int
	row := s.db.QueryRow(
		`SELECT id, discarded, recombined, pruned, best_score, stack_count, deadline_hit FROM sentence_runs WHERE id = ?`,
		id,
	)
	if err := row.Scan(&r.ID, &r.Discarded, &r.Recombined, &r.Pruned, &r.BestScore, &r.StackCount, &deadlineHit); err != nil {
		return Record{}, err
	}
	r.DeadlineHit = deadlineHit != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
