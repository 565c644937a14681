// Package inmemory provides an in-memory implementation of storage.Store.
//
// Used for tests and for running the servers without a database file. State
// is lost on process exit.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/braidhq/braid/pkg/event"
	"github.com/braidhq/braid/pkg/storage"
)

// Store implements storage.Store using in-process data structures.
type Store struct {
	mu     sync.RWMutex
	events map[int64]*event.Event
	nextID int64
	closed bool

	// Now is the clock used to stamp inserted events. Tests may override it.
	Now func() time.Time
}

// New creates an empty in-memory event store.
func New() *Store {
	return &Store{
		events: make(map[int64]*event.Event),
		nextID: 1,
		Now:    time.Now,
	}
}

// Insert atomically appends a new event.
func (s *Store) Insert(_ context.Context, effectText string, embedding []float32, causeID *int64, relationship *string) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	ev := &event.Event{
		ID:           s.nextID,
		Timestamp:    s.Now().UTC(),
		EffectText:   effectText,
		Embedding:    append([]float32(nil), embedding...),
		CauseID:      causeID,
		Relationship: relationship,
	}
	s.events[ev.ID] = ev
	s.nextID++

	return copyEvent(ev), nil
}

// InsertAt appends an event with an explicit timestamp. Test support for
// exercising time-window filtering; not part of storage.Store.
func (s *Store) InsertAt(_ context.Context, effectText string, embedding []float32, causeID *int64, relationship *string, ts time.Time) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}

	ev := &event.Event{
		ID:           s.nextID,
		Timestamp:    ts.UTC(),
		EffectText:   effectText,
		Embedding:    append([]float32(nil), embedding...),
		CauseID:      causeID,
		Relationship: relationship,
	}
	s.events[ev.ID] = ev
	s.nextID++

	return copyEvent(ev), nil
}

// OverrideCause rewrites an event's cause edge in place. Test support for
// simulating store corruption (broken links, cycles); not part of storage.Store.
func (s *Store) OverrideCause(id int64, causeID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev, ok := s.events[id]; ok {
		ev.CauseID = causeID
	}
}

// GetByID retrieves a single event by id.
func (s *Store) GetByID(_ context.Context, id int64) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return copyEvent(ev), nil
}

// RecentWithin returns events newer than since, newest first, capped at limit.
func (s *Store) RecentWithin(_ context.Context, since time.Time, limit int) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*event.Event
	for _, ev := range s.events {
		if ev.Timestamp.After(since) {
			events = append(events, copyEvent(ev))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].ID > events[j].ID
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// AllForScan returns every event, oldest first.
func (s *Store) AllForScan(_ context.Context) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*event.Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, copyEvent(ev))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

// ChildrenOf returns events caused by the given id, oldest first.
func (s *Store) ChildrenOf(_ context.Context, id int64) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*event.Event
	for _, ev := range s.events {
		if ev.CauseID != nil && *ev.CauseID == id {
			children = append(children, copyEvent(ev))
		}
	}

	sort.Slice(children, func(i, j int) bool {
		if !children[i].Timestamp.Equal(children[j].Timestamp) {
			return children[i].Timestamp.Before(children[j].Timestamp)
		}
		return children[i].ID < children[j].ID
	})
	return children, nil
}

// Stats reports aggregate counts.
func (s *Store) Stats(_ context.Context) (storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := storage.Stats{TotalEvents: int64(len(s.events))}
	for _, ev := range s.events {
		if ev.CauseID != nil {
			stats.LinkedEvents++
		}
	}
	return stats, nil
}

// Ping always succeeds while the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.ErrClosed
	}
	return nil
}

// Close marks the store closed. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func copyEvent(ev *event.Event) *event.Event {
	dup := *ev
	dup.Embedding = append([]float32(nil), ev.Embedding...)
	if ev.CauseID != nil {
		id := *ev.CauseID
		dup.CauseID = &id
	}
	if ev.Relationship != nil {
		rel := *ev.Relationship
		dup.Relationship = &rel
	}
	return &dup
}

// Ensure Store implements storage.Store.
var _ storage.Store = (*Store)(nil)
