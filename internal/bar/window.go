package bar

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/ring"
)

// ErrWindowUnderflow is returned by lookback queries asking for more history
// than the window currently holds.
var ErrWindowUnderflow = errors.New("bar: window underflow, not enough data")

// Window is the fixed-capacity ordered sequence of recent bars for one
// symbol. It is owned exclusively by one runner;
// nothing here is safe for concurrent use by design, matching the
// "never shared across tasks" invariant.
type Window struct {
	buf *ring.Buffer[Bar]
}

// NewWindow allocates a window with the given capacity (must be positive).
func NewWindow(capacity int) *Window {
	return &Window{buf: ring.NewBuffer[Bar](capacity)}
}

// Capacity returns the configured capacity.
func (w *Window) Capacity() int { return w.buf.Cap() }

// Len returns how many bars are currently retained.
func (w *Window) Len() int { return w.buf.Len() }

// Append adds a bar, evicting the oldest one if the window is full.
func (w *Window) Append(b Bar) { w.buf.Push(b) }

// Latest returns the most recently appended bar.
func (w *Window) Latest() (Bar, bool) { return w.buf.Latest() }

// Oldest returns the oldest bar still retained.
func (w *Window) Oldest() (Bar, bool) { return w.buf.Oldest() }

// Get returns the bar at logical index i (0 = oldest).
func (w *Window) Get(i int) (Bar, bool) { return w.buf.At(i) }

// Iter returns every retained bar, oldest first. The returned slice is a
// fresh copy; mutating it does not affect the window.
func (w *Window) Iter() []Bar { return w.buf.Snapshot() }

// RecentBars returns the most recent n bars, oldest first, clamped to
// however many the window currently holds if it holds fewer than n.
func (w *Window) RecentBars(n int) []Bar {
	if n <= 0 {
		return nil
	}
	if n > w.buf.Len() {
		n = w.buf.Len()
	}
	return w.buf.Tail(n)
}

// Closes returns the close prices of the most recent n bars, oldest first,
// as float64 — the decimal-to-float boundary sits here, not inside the
// indicator math itself.
func (w *Window) Closes(n int) ([]float64, error) {
	if n <= 0 || n > w.buf.Len() {
		return nil, ErrWindowUnderflow
	}
	tail := w.buf.Tail(n)
	out := make([]float64, len(tail))
	for i, b := range tail {
		out[i], _ = b.Close.Float64()
	}
	return out, nil
}

// High returns the highest High over the most recent n bars.
func (w *Window) High(n int) (decimal.Decimal, error) {
	tail, err := w.tail(n)
	if err != nil {
		return decimal.Zero, err
	}
	max := tail[0].High
	for _, b := range tail[1:] {
		if b.High.GreaterThan(max) {
			max = b.High
		}
	}
	return max, nil
}

// Low returns the lowest Low over the most recent n bars.
func (w *Window) Low(n int) (decimal.Decimal, error) {
	tail, err := w.tail(n)
	if err != nil {
		return decimal.Zero, err
	}
	min := tail[0].Low
	for _, b := range tail[1:] {
		if b.Low.LessThan(min) {
			min = b.Low
		}
	}
	return min, nil
}

// Range returns High(n) - Low(n).
func (w *Window) Range(n int) (decimal.Decimal, error) {
	hi, err := w.High(n)
	if err != nil {
		return decimal.Zero, err
	}
	lo, err := w.Low(n)
	if err != nil {
		return decimal.Zero, err
	}
	return hi.Sub(lo), nil
}

// AvgVolume returns the mean Volume over the most recent n bars.
func (w *Window) AvgVolume(n int) (float64, error) {
	tail, err := w.tail(n)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, b := range tail {
		sum += b.Volume
	}
	return float64(sum) / float64(len(tail)), nil
}

func (w *Window) tail(n int) ([]Bar, error) {
	if n <= 0 || n > w.buf.Len() {
		return nil, ErrWindowUnderflow
	}
	return w.buf.Tail(n), nil
}
