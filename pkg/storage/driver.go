// Package storage provides interfaces and implementations for durable event
// persistence.
//
// The [Store] interface is intentionally small: events are append-only rows,
// so there is a single write path (Insert) and a handful of read shapes that
// the engine needs for candidate scanning and chain traversal. Similarity is
// computed outside the store; drivers just return rows.
package storage

import (
	"context"
	"time"

	"github.com/braidhq/braid/pkg/event"
)

// Store handles persistence of events and their causal edges.
//
// Implementations must make identifier allocation and row insertion atomic
// together so concurrent Insert calls can never assign the same id.
type Store interface {
	// Insert atomically appends a new event, assigning its id and UTC
	// timestamp, and returns the stored row.
	Insert(ctx context.Context, effectText string, embedding []float32, causeID *int64, relationship *string) (*event.Event, error)

	// GetByID retrieves a single event. Returns a NotFoundError if absent.
	GetByID(ctx context.Context, id int64) (*event.Event, error)

	// RecentWithin returns events whose timestamp is strictly after since,
	// newest first, capped at limit. Used as the candidate pool for linking.
	RecentWithin(ctx context.Context, since time.Time, limit int) ([]*event.Event, error)

	// AllForScan returns every event for the exact-scan anchor search.
	AllForScan(ctx context.Context) ([]*event.Event, error)

	// ChildrenOf returns events whose cause is the given id, oldest first.
	// Supports forward traversal.
	ChildrenOf(ctx context.Context, id int64) ([]*event.Event, error)

	// Stats reports aggregate counts over the store.
	Stats(ctx context.Context) (Stats, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store. Safe to call twice.
	Close() error
}

// Stats are aggregate counts over the event table.
type Stats struct {
	// TotalEvents is the number of persisted events.
	TotalEvents int64 `json:"total_events"`

	// LinkedEvents is the number of events with a non-null cause.
	LinkedEvents int64 `json:"linked_events"`
}

// OrphanEvents is the number of root events (no recorded cause).
func (s Stats) OrphanEvents() int64 {
	return s.TotalEvents - s.LinkedEvents
}

// ChainCoverage is the fraction of events that carry a causal edge.
func (s Stats) ChainCoverage() float64 {
	if s.TotalEvents == 0 {
		return 0
	}
	return float64(s.LinkedEvents) / float64(s.TotalEvents)
}
