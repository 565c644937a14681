// Package sqlite provides a SQLite-backed event store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/braidhq/braid/pkg/event"
	"github.com/braidhq/braid/pkg/storage"
)

// timeLayout is a fixed-width UTC layout so lexicographic ordering in SQL
// matches chronological ordering.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB

	// mu serializes writes; id allocation and row insert must be atomic together.
	mu sync.Mutex

	now    func() time.Time
	closed bool
}

// New creates a new SQLite-backed event store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and sidesteps
	// SQLITE_BUSY between the write transaction and concurrent readers.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:  db,
		now: time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the events table and indexes if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		event_id INTEGER PRIMARY KEY,
		timestamp TEXT NOT NULL,
		effect_text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		cause_id INTEGER,
		relationship TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_cause_id ON events(cause_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Insert atomically appends a new event. The next id is derived from
// MAX(event_id)+1 inside the same transaction as the insert, which keeps id
// allocation crash-safe and collision-free across restarts.
func (s *Store) Insert(ctx context.Context, effectText string, embedding []float32, causeID *int64, relationship *string) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nextID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(event_id), 0) + 1 FROM events`,
	).Scan(&nextID); err != nil {
		return nil, fmt.Errorf("failed to allocate event id: %w", err)
	}

	ts := s.now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (event_id, timestamp, effect_text, embedding, cause_id, relationship)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nextID, ts.Format(timeLayout), effectText, event.MarshalEmbedding(embedding),
		nullableInt(causeID), nullableString(relationship),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert: %w", err)
	}

	return &event.Event{
		ID:           nextID,
		Timestamp:    ts,
		EffectText:   effectText,
		Embedding:    embedding,
		CauseID:      causeID,
		Relationship: relationship,
	}, nil
}

// GetByID retrieves a single event by id.
func (s *Store) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT event_id, timestamp, effect_text, embedding, cause_id, relationship
		 FROM events WHERE event_id = ?`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event %d: %w", id, err)
	}

	return ev, nil
}

// RecentWithin returns events newer than since, newest first, capped at limit.
func (s *Store) RecentWithin(ctx context.Context, since time.Time, limit int) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, timestamp, effect_text, embedding, cause_id, relationship
		 FROM events WHERE timestamp > ?
		 ORDER BY timestamp DESC, event_id DESC
		 LIMIT ?`,
		since.UTC().Format(timeLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// AllForScan returns every event, oldest first.
func (s *Store) AllForScan(ctx context.Context) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, timestamp, effect_text, embedding, cause_id, relationship
		 FROM events ORDER BY event_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ChildrenOf returns events caused by the given id, oldest first.
func (s *Store) ChildrenOf(ctx context.Context, id int64) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, timestamp, effect_text, embedding, cause_id, relationship
		 FROM events WHERE cause_id = ?
		 ORDER BY timestamp ASC, event_id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %d: %w", id, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Stats reports aggregate counts over the event table.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(cause_id) FROM events`,
	).Scan(&stats.TotalEvents, &stats.LinkedEvents)
	if err != nil {
		return storage.Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		ev           event.Event
		ts           string
		blob         []byte
		causeID      sql.NullInt64
		relationship sql.NullString
	)

	if err := row.Scan(&ev.ID, &ts, &ev.EffectText, &blob, &causeID, &relationship); err != nil {
		return nil, err
	}

	parsed, err := time.ParseInLocation(timeLayout, ts, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp %q: %w", ts, err)
	}
	ev.Timestamp = parsed

	ev.Embedding, err = event.UnmarshalEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("corrupt embedding for event %d: %w", ev.ID, err)
	}

	if causeID.Valid {
		ev.CauseID = &causeID.Int64
	}
	if relationship.Valid {
		ev.Relationship = &relationship.String
	}

	return &ev, nil
}

func scanEvents(rows *sql.Rows) ([]*event.Event, error) {
	var events []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// Ensure Store implements storage.Store.
var _ storage.Store = (*Store)(nil)
