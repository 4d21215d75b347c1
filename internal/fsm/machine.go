package fsm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/ring"
)

const transitionLogCapacity = 100

// Outcome describes what Apply actually did, so the caller (internal/runner)
// can translate it into the right sequence of events without re-deriving
// the transition table itself.
type Outcome struct {
	Action           ActionKind
	StateChanged     bool
	From, To         State
	TransitionReason string
	Opened           *Position
	PositionMutated  bool
	Closed           *ClosedPosition
}

// Machine is the per-runner Idle/Analyzing/InPosition state machine: it owns
// the current state, at most one open Position, and a bounded transition
// log. It is not safe for concurrent use — one runner, one machine, one
// goroutine.
type Machine struct {
	state    State
	position *Position
	log      *ring.Buffer[Transition]
}

// NewMachine returns a machine starting in Idle with no position.
func NewMachine() *Machine {
	return &Machine{state: Idle, log: ring.NewBuffer[Transition](transitionLogCapacity)}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Position returns a copy of the open position, if any.
func (m *Machine) Position() (Position, bool) {
	if m.position == nil {
		return Position{}, false
	}
	return *m.position, true
}

// Transitions returns the retained transition history, oldest first.
func (m *Machine) Transitions() []Transition { return m.log.Snapshot() }

func (m *Machine) transition(to State, reason string, now int64) {
	t := Transition{From: m.state, To: to, Reason: reason, Timestamp: now}
	m.log.Push(t)
	m.state = to
}

// UpdateCurrentPrice refreshes the open position's observed price, if any.
// It reports whether a position existed to update.
func (m *Machine) UpdateCurrentPrice(price decimal.Decimal) bool {
	if m.position == nil {
		return false
	}
	m.position.CurrentPrice = price
	return true
}

// CheckAutoExit evaluates the stop-loss/take-profit guards against the
// position's last observed price. It is checked once per bar, before
// strategy dispatch, against the position as it stood at the start of the
// bar — a position cannot enter and exit within the same tick.
func (m *Machine) CheckAutoExit(now int64) (ClosedPosition, bool) {
	if m.position == nil {
		return ClosedPosition{}, false
	}
	pos := *m.position
	price := pos.CurrentPrice

	var reason string
	switch pos.Side {
	case Long:
		switch {
		case pos.StopLoss != nil && price.LessThanOrEqual(*pos.StopLoss):
			reason = "stop_loss"
		case pos.TakeProfit != nil && price.GreaterThanOrEqual(*pos.TakeProfit):
			reason = "take_profit"
		}
	case Short:
		switch {
		case pos.StopLoss != nil && price.GreaterThanOrEqual(*pos.StopLoss):
			reason = "stop_loss"
		case pos.TakeProfit != nil && price.LessThanOrEqual(*pos.TakeProfit):
			reason = "take_profit"
		}
	}
	if reason == "" {
		return ClosedPosition{}, false
	}

	closed := ClosedPosition{
		Position:    pos,
		ExitPrice:   price,
		RealizedPnL: pos.RealizedPnL(price),
		Reason:      reason,
	}
	m.position = nil
	m.transition(Idle, reason, now)
	return closed, true
}

// Apply executes action against the machine per its transition table.
// now is milliseconds since epoch, used for the transition log and
// (on entry) EntryTimestamp.
func (m *Machine) Apply(action Action, now int64) (Outcome, error) {
	out := Outcome{Action: action.Kind, From: m.state, To: m.state}

	switch action.Kind {
	case NoAction:
		return out, nil

	case StartAnalyzing:
		if m.state != Idle {
			return out, m.illegal(action.Kind)
		}
		m.transition(Analyzing, action.Reason, now)
		out.StateChanged, out.To, out.TransitionReason = true, Analyzing, action.Reason
		return out, nil

	case CancelAnalysis:
		if m.state != Analyzing {
			return out, m.illegal(action.Kind)
		}
		m.transition(Idle, action.Reason, now)
		out.StateChanged, out.To, out.TransitionReason = true, Idle, action.Reason
		return out, nil

	case EnterLong, EnterShort:
		if m.state != Idle && m.state != Analyzing {
			return out, m.illegal(action.Kind)
		}
		side := Long
		if action.Kind == EnterShort {
			side = Short
		}
		if err := validateEntryGuards(side, action.Price, action.StopLoss, action.TakeProfit); err != nil {
			return out, err
		}
		pos := &Position{
			EntryPrice:     action.Price,
			Quantity:       action.Quantity,
			Side:           side,
			EntryTimestamp: now,
			StopLoss:       action.StopLoss,
			TakeProfit:     action.TakeProfit,
			CurrentPrice:   action.Price,
		}
		m.position = pos
		m.transition(InPosition, string(action.Kind), now)
		opened := *pos
		out.StateChanged, out.To = true, InPosition
		out.Opened = &opened
		return out, nil

	case UpdateStopLoss:
		if m.state != InPosition || m.position == nil {
			return out, m.illegal(action.Kind)
		}
		ns := action.NewStop
		m.position.StopLoss = &ns
		out.PositionMutated = true
		return out, nil

	case UpdateTakeProfit:
		if m.state != InPosition || m.position == nil {
			return out, m.illegal(action.Kind)
		}
		nt := action.NewTarget
		m.position.TakeProfit = &nt
		out.PositionMutated = true
		return out, nil

	case ExitPosition:
		if m.state != InPosition || m.position == nil {
			return out, m.illegal(action.Kind)
		}
		pos := *m.position
		reason := action.Reason
		if reason == "" {
			reason = "action"
		}
		closed := ClosedPosition{
			Position:    pos,
			ExitPrice:   action.ExitPrice,
			RealizedPnL: pos.RealizedPnL(action.ExitPrice),
			Reason:      reason,
		}
		m.position = nil
		m.transition(Idle, reason, now)
		out.StateChanged, out.To = true, Idle
		out.Closed = &closed
		return out, nil

	default:
		return out, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, action.Kind)
	}
}

func (m *Machine) illegal(kind ActionKind) error {
	return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, kind, m.state)
}

// validateEntryGuards enforces the position invariants: stop
// loss below entry (above for Short), take profit mirrored.
func validateEntryGuards(side Side, entry decimal.Decimal, stop, target *decimal.Decimal) error {
	switch side {
	case Long:
		if stop != nil && stop.GreaterThanOrEqual(entry) {
			return fmt.Errorf("%w: long stop_loss must be below entry_price", ErrIllegalTransition)
		}
		if target != nil && target.LessThanOrEqual(entry) {
			return fmt.Errorf("%w: long take_profit must be above entry_price", ErrIllegalTransition)
		}
	case Short:
		if stop != nil && stop.LessThanOrEqual(entry) {
			return fmt.Errorf("%w: short stop_loss must be above entry_price", ErrIllegalTransition)
		}
		if target != nil && target.GreaterThanOrEqual(entry) {
			return fmt.Errorf("%w: short take_profit must be below entry_price", ErrIllegalTransition)
		}
	}
	return nil
}
