// Package bar defines the market bar record and the fixed-capacity window
// that holds the most recent bars for one symbol.
package bar

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidBar is returned by Validate when a bar violates one of the
// invariants (low <= open,close <= high; bid <= ask).
var ErrInvalidBar = errors.New("bar: invalid OHLC/bid-ask invariant")

// Bar is an immutable OHLCV + bid/ask record for one symbol at one
// timestamp. Values are copied (not pointers) wherever a Bar crosses a
// concurrency boundary, since decimal.Decimal is itself an immutable value.
type Bar struct {
	Symbol    string
	Timestamp int64 // milliseconds since epoch
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
	Bid       decimal.Decimal // zero value means "not set"
	Ask       decimal.Decimal
}

// HasQuote reports whether both Bid and Ask were supplied.
func (b Bar) HasQuote() bool {
	return !b.Bid.IsZero() && !b.Ask.IsZero()
}

// MidPrice returns (bid+ask)/2, or the zero Decimal if no quote is set.
func (b Bar) MidPrice() decimal.Decimal {
	if !b.HasQuote() {
		return decimal.Zero
	}
	return b.Bid.Add(b.Ask).Div(decimal.NewFromInt(2))
}

// Validate checks the invariants a single bar must satisfy in
// isolation (it does not check the non-decreasing-timestamp invariant,
// which is a property of a stream, not of one bar).
func (b Bar) Validate() error {
	if b.Volume < 0 {
		return ErrInvalidBar
	}
	if b.Low.GreaterThan(b.Open) || b.Open.GreaterThan(b.High) {
		return ErrInvalidBar
	}
	if b.Low.GreaterThan(b.Close) || b.Close.GreaterThan(b.High) {
		return ErrInvalidBar
	}
	if b.HasQuote() && b.Bid.GreaterThan(b.Ask) {
		return ErrInvalidBar
	}
	return nil
}
