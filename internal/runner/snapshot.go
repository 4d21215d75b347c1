package runner

import (
	"github.com/Gavin-McEllistrem/trading-simulator/internal/contextstore"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/events"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
)

// Status is the coarse running/paused/stopped lifecycle state of a Runner,
// distinct from the finite state machine's Idle/Analyzing/InPosition state.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Snapshot is a point-in-time, read-only view of a Runner's state, handed
// back in response to a CmdSnapshot command. RunnerStopped events carry
// only its Stats part.
type Snapshot struct {
	RunnerID          string
	Symbol            string
	State             fsm.State
	Status            Status
	Position          *fsm.View
	Context           contextstore.Snapshot
	Stats             events.StatsSnapshot
	UptimeSecs        int64
	SnapshotTimestamp int64
}
