package storage

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when operations are attempted on a closed store.
var ErrClosed = errors.New("store is closed")

// NotFoundError is returned when an event id does not resolve to a row.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("event %d not found", e.ID)
}

// IsNotFound reports whether err indicates a missing event row.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
