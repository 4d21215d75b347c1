package fsm

import "github.com/shopspring/decimal"

// ActionKind enumerates the action alphabet a strategy (or the auto-exit
// guard) can apply to the state machine.
type ActionKind string

const (
	NoAction         ActionKind = "NoAction"
	StartAnalyzing   ActionKind = "StartAnalyzing"
	CancelAnalysis   ActionKind = "CancelAnalysis"
	EnterLong        ActionKind = "EnterLong"
	EnterShort       ActionKind = "EnterShort"
	ExitPosition     ActionKind = "ExitPosition"
	UpdateStopLoss   ActionKind = "UpdateStopLoss"
	UpdateTakeProfit ActionKind = "UpdateTakeProfit"
)

// Action is the command alphabet the state machine executes. Which fields
// are meaningful depends on Kind; see machine.go's transition table
// for the exact semantics of each variant.
type Action struct {
	Kind ActionKind

	// EnterLong / EnterShort
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal

	// ExitPosition
	ExitPrice decimal.Decimal

	// UpdateStopLoss / UpdateTakeProfit
	NewStop   decimal.Decimal
	NewTarget decimal.Decimal

	// StartAnalyzing / CancelAnalysis / ExitPosition
	Reason string
}
