package fsm

import "errors"

// ErrIllegalTransition is returned when an action is incompatible with the
// machine's current state. It is always non-fatal to the caller: log,
// count, drop, keep the state unchanged.
var ErrIllegalTransition = errors.New("fsm: illegal transition")
