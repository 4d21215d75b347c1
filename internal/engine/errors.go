package engine

import "errors"

// ErrDuplicateID is returned by AddRunner when a runner with the same ID
// is already registered.
var ErrDuplicateID = errors.New("engine: duplicate runner id")

// ErrNotFound is returned by any operation addressed to a runner ID the
// engine does not know about.
var ErrNotFound = errors.New("engine: runner not found")
