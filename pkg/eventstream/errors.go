package eventstream

import "errors"

// ErrNilEvent indicates a nil notification payload was provided to a publisher.
var ErrNilEvent = errors.New("nil event notification")
