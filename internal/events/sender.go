package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/bar"
	"github.com/Gavin-McEllistrem/trading-simulator/internal/fsm"
)

// Sender is a per-runner handle onto a Bus. It stamps every event with the
// owning runner's ID and symbol so subscribers never have to cross-reference
// which runner an event came from.
type Sender struct {
	bus      *Bus
	runnerID string
	symbol   string
}

// NewSender binds a bus to a specific runner identity.
func NewSender(bus *Bus, runnerID, symbol string) Sender {
	return Sender{bus: bus, runnerID: runnerID, symbol: symbol}
}

func (s Sender) base(kind Kind) Event {
	return Event{
		ID:        uuid.NewString(),
		RunnerID:  s.runnerID,
		Symbol:    s.symbol,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (s Sender) TickReceived(b bar.Bar) {
	ev := s.base(KindTickReceived)
	ev.Bar = &b
	s.bus.Publish(ev)
}

func (s Sender) StateChanged(from, to fsm.State, reason string) {
	ev := s.base(KindStateChanged)
	ev.PrevState = from
	ev.State = to
	ev.Reason = reason
	s.bus.Publish(ev)
}

func (s Sender) PositionOpened(view fsm.View) {
	ev := s.base(KindPositionOpened)
	ev.Position = &view
	s.bus.Publish(ev)
}

func (s Sender) PositionUpdated(view fsm.View) {
	ev := s.base(KindPositionUpdated)
	ev.Position = &view
	s.bus.Publish(ev)
}

func (s Sender) PositionClosed(closed fsm.ClosedPosition) {
	ev := s.base(KindPositionClosed)
	ev.Closed = &closed
	s.bus.Publish(ev)
}

func (s Sender) StrategyError(err error) {
	ev := s.base(KindStrategyError)
	ev.Err = err
	s.bus.Publish(ev)
}

func (s Sender) RunnerStarted() {
	s.bus.Publish(s.base(KindRunnerStarted))
}

func (s Sender) RunnerPaused() {
	s.bus.Publish(s.base(KindRunnerPaused))
}

func (s Sender) RunnerResumed() {
	s.bus.Publish(s.base(KindRunnerResumed))
}

func (s Sender) RunnerStopped(stats StatsSnapshot, reason string) {
	ev := s.base(KindRunnerStopped)
	ev.Stats = &stats
	ev.Reason = reason
	s.bus.Publish(ev)
}

func (s Sender) CriticalError(err error, message string) {
	ev := s.base(KindCriticalError)
	ev.Err = err
	ev.Message = message
	s.bus.Publish(ev)
}
