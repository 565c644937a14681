package eventstream

import "context"

// Publisher publishes persisted-event notifications to a stream backend.
type Publisher interface {
	PublishEvent(ctx context.Context, ev *EventPersisted) error
	Close() error
}
