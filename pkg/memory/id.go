package memory

import "github.com/google/uuid"

// newNotifyID returns a unique id for an eventstream notification.
func newNotifyID() string {
	return uuid.NewString()
}
