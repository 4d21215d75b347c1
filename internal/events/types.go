package events

import (
	"time"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
)

// Kind enumerates every event a runner can emit.
type Kind string

const (
	KindTickReceived    Kind = "tick_received"
	KindStateChanged    Kind = "state_changed"
	KindPositionOpened  Kind = "position_opened"
	KindPositionUpdated Kind = "position_updated"
	KindPositionClosed  Kind = "position_closed"
	KindStrategyError   Kind = "strategy_error"
	KindRunnerStarted   Kind = "runner_started"
	KindRunnerPaused    Kind = "runner_paused"
	KindRunnerResumed   Kind = "runner_resumed"
	KindRunnerStopped   Kind = "runner_stopped"
	KindCriticalError   Kind = "critical_error"
)

// Critical reports whether a kind must be delivered to every connected
// subscriber rather than dropped under backpressure. TickReceived and
// PositionUpdated fire on every processed bar and are allowed to be lossy
// for a slow subscriber; state transitions, lifecycle, and error events
// are not.
func (k Kind) Critical() bool {
	switch k {
	case KindTickReceived, KindPositionUpdated:
		return false
	default:
		return true
	}
}

// StatsSnapshot duplicates the fields of a runner's counters rather than
// importing the runner package, so events has no dependency on runner:
// runner depends on events to publish, never the other way around.
type StatsSnapshot struct {
	BarsProcessed   int64
	SignalsEmitted  int64
	ErrorsObserved  int64
	MinProcessNanos int64
	AvgProcessNanos int64
	MaxProcessNanos int64
}

// Event is the single envelope type carried across the bus. Only the
// fields relevant to Kind are populated; the rest are left at their zero
// value.
type Event struct {
	ID        string
	RunnerID  string
	Symbol    string
	Kind      Kind
	Timestamp time.Time

	Bar       *bar.Bar
	State     fsm.State
	PrevState fsm.State
	Reason    string
	Position  *fsm.View
	Closed    *fsm.ClosedPosition
	Stats     *StatsSnapshot
	Err       error
	Message   string
}
