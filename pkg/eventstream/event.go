// Package eventstream defines transport-neutral notifications emitted after
// an event is persisted, and the Publisher interface backends implement.
package eventstream

import (
	"time"

	"github.com/braidhq/braid/pkg/event"
)

const (
	// SchemaVersionV1 is the first version of the notification payload schema.
	SchemaVersionV1 = 1

	// TypeEventPersisted is emitted after an event is persisted.
	TypeEventPersisted = "braid.event.persisted"
)

// EventPersisted is a transport-neutral payload for a persisted event.
type EventPersisted struct {
	SchemaVersion int       `json:"schema_version"`
	Type          string    `json:"type"`
	NotifyID      string    `json:"notify_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	EventID      int64     `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	EffectText   string    `json:"effect_text"`
	CauseID      *int64    `json:"cause_id,omitempty"`
	Relationship *string   `json:"causal_relationship,omitempty"`
	SoftLinked   bool      `json:"soft_linked,omitempty"`
}

// FromEvent builds an EventPersisted payload for a stored event.
func FromEvent(ev *event.Event, notifyID string, emittedAt time.Time, softLinked bool) *EventPersisted {
	return &EventPersisted{
		SchemaVersion: SchemaVersionV1,
		Type:          TypeEventPersisted,
		NotifyID:      notifyID,
		EmittedAt:     emittedAt,
		EventID:       ev.ID,
		Timestamp:     ev.Timestamp,
		EffectText:    ev.EffectText,
		CauseID:       ev.CauseID,
		Relationship:  ev.Relationship,
		SoftLinked:    softLinked,
	}
}
