// Package event defines the core record type of the braid system: a single
// observed effect with its embedding and an optional causal edge back to the
// event that caused it.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxEffectTextLen is the maximum accepted length for event text.
	MaxEffectTextLen = 10000

	// MaxQueryTextLen is the maximum accepted length for query text.
	MaxQueryTextLen = 1000
)

// Event is a single recorded observation. Events are append-only: once
// inserted they are never mutated or deleted.
type Event struct {
	// ID is the dense, monotonically increasing identifier assigned by the store.
	ID int64 `json:"event_id"`

	// Timestamp is the UTC instant the event was inserted.
	Timestamp time.Time `json:"timestamp"`

	// EffectText is the recorded observation. Never empty or whitespace-only.
	EffectText string `json:"effect_text"`

	// Embedding is the vector representation of EffectText.
	Embedding []float32 `json:"-"`

	// CauseID references the direct cause, if one was established.
	// Nil means this event is a root.
	CauseID *int64 `json:"cause_id,omitempty"`

	// Relationship is a short phrase describing why cause led to effect.
	Relationship *string `json:"causal_relationship,omitempty"`
}

// IsRoot reports whether the event has no recorded cause.
func (e *Event) IsRoot() bool {
	return e.CauseID == nil
}

// ErrEmptyText is returned when event or query text is empty or whitespace.
var ErrEmptyText = errors.New("text cannot be empty or contain only whitespace")

// ValidateEffectText checks the entry-boundary preconditions for event text.
func ValidateEffectText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); n > MaxEffectTextLen {
		return fmt.Errorf("effect_text exceeds %d characters (got %d)", MaxEffectTextLen, n)
	}
	return nil
}

// ValidateQueryText checks the entry-boundary preconditions for query text.
func ValidateQueryText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); n > MaxQueryTextLen {
		return fmt.Errorf("query exceeds %d characters (got %d)", MaxQueryTextLen, n)
	}
	return nil
}
