// Package indicators implements pure functions over a price vector: SMA,
// EMA, RSI, MACD, Bollinger Bands. Every function here
// is deterministic and allocation-only — no shared state, no locking — so
// it can be called freely from strategy callback closures.
package indicators

import "errors"

// ErrInvalidArgument covers period <= 0, period > length, num_std_dev <= 0,
// and fast >= slow.
var ErrInvalidArgument = errors.New("indicators: invalid argument")
