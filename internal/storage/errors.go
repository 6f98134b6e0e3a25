package storage

import "errors"

// ErrMissingInstanceID is returned when a trade arrives without a position
// instance id to key on.
var ErrMissingInstanceID = errors.New("trade has no position instance id")
