package fsm

import "github.com/shopspring/decimal"

// Position is the single open trade a runner may hold. Machine enforces
// the at-most-one-position invariant by construction: it only ever holds
// zero or one *Position.
type Position struct {
	EntryPrice     decimal.Decimal
	Quantity       decimal.Decimal
	Side           Side
	EntryTimestamp int64
	StopLoss       *decimal.Decimal
	TakeProfit     *decimal.Decimal
	CurrentPrice   decimal.Decimal
}

// UnrealizedPnL computes (current-entry)*qty for Long, negated for Short.
func (p Position) UnrealizedPnL() decimal.Decimal {
	diff := p.CurrentPrice.Sub(p.EntryPrice)
	pnl := diff.Mul(p.Quantity)
	if p.Side == Short {
		return pnl.Neg()
	}
	return pnl
}

// RealizedPnL computes the P&L of closing the position at exitPrice.
func (p Position) RealizedPnL(exitPrice decimal.Decimal) decimal.Decimal {
	diff := exitPrice.Sub(p.EntryPrice)
	pnl := diff.Mul(p.Quantity)
	if p.Side == Short {
		return pnl.Neg()
	}
	return pnl
}

// View is the JSON-serializable, read-only projection of a Position used in
// snapshots and events.
type View struct {
	EntryPrice     decimal.Decimal  `json:"entry_price"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Side           Side             `json:"side"`
	EntryTimestamp int64            `json:"entry_timestamp"`
	StopLoss       *decimal.Decimal `json:"stop_loss,omitempty"`
	TakeProfit     *decimal.Decimal `json:"take_profit,omitempty"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	UnrealizedPnL  decimal.Decimal  `json:"unrealized_pnl"`
}

// View projects a Position into its serializable form.
func (p Position) View() View {
	return View{
		EntryPrice:     p.EntryPrice,
		Quantity:       p.Quantity,
		Side:           p.Side,
		EntryTimestamp: p.EntryTimestamp,
		StopLoss:       p.StopLoss,
		TakeProfit:     p.TakeProfit,
		CurrentPrice:   p.CurrentPrice,
		UnrealizedPnL:  p.UnrealizedPnL(),
	}
}

// ClosedPosition describes a position that just exited.
type ClosedPosition struct {
	Position    Position
	ExitPrice   decimal.Decimal
	RealizedPnL decimal.Decimal
	Reason      string
}
