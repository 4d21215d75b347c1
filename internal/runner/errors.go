package runner

import "errors"

// ErrStopped is returned when a command is sent to a runner whose loop has
// already exited.
var ErrStopped = errors.New("runner: already stopped")

// ErrTimeout is returned when a command's reply does not arrive within the
// caller-supplied deadline.
var ErrTimeout = errors.New("runner: command timed out")

// ErrChannelClosed names the condition of the bar feed channel closing
// while the runner is still expected to be processing bars. No function in
// this package returns it: Run simply exits with the stop reason
// "bar channel closed".
var ErrChannelClosed = errors.New("runner: bar channel closed")
