package indicators

// View answers on-demand indicator queries against a fixed snapshot of
// closing prices. It is constructed once per bar from the runner's window
// and handed to the strategy host, so every indicator call a script makes
// during a single invocation sees the same prices no matter how many times
// it asks.
type View struct {
	closes []float64
	highs  []float64
	lows   []float64
	volume []float64
}

// NewView takes ownership of the supplied slices; callers should pass a
// copy or a slice they no longer mutate.
func NewView(closes, highs, lows, volume []float64) *View {
	return &View{closes: closes, highs: highs, lows: lows, volume: volume}
}

// Len returns the number of bars backing this view.
func (v *View) Len() int {
	return len(v.closes)
}

// SMA returns the most recent simple moving average value for period, or
// ok=false if there isn't enough history yet.
func (v *View) SMA(period int) (float64, bool) {
	out, err := SMA(v.closes, period)
	if err != nil || len(out) == 0 {
		return 0, false
	}
	return out[len(out)-1], true
}

// EMA returns the most recent exponential moving average value for period.
func (v *View) EMA(period int) (float64, bool) {
	out, err := EMA(v.closes, period)
	if err != nil || len(out) == 0 {
		return 0, false
	}
	return out[len(out)-1], true
}

// RSI returns the most recent RSI value for period.
func (v *View) RSI(period int) (float64, bool) {
	out, err := RSI(v.closes, period)
	if err != nil || len(out) == 0 {
		return 0, false
	}
	return out[len(out)-1], true
}

// MACD returns the most recent MACD line/signal/histogram triple.
func (v *View) MACD(fast, slow, signal int) (macd, sig, hist float64, ok bool) {
	res, err := MACD(v.closes, fast, slow, signal)
	if err != nil || len(res.MACDLine) == 0 {
		return 0, 0, 0, false
	}
	i := len(res.MACDLine) - 1
	return res.MACDLine[i], res.Signal[i], res.Histogram[i], true
}

// Bollinger returns the most recent middle/upper/lower band triple.
func (v *View) Bollinger(period int, numStdDev float64) (mid, upper, lower float64, ok bool) {
	res, err := Bollinger(v.closes, period, numStdDev)
	if err != nil || len(res.Middle) == 0 {
		return 0, 0, 0, false
	}
	i := len(res.Middle) - 1
	return res.Middle[i], res.Upper[i], res.Lower[i], true
}

// High returns the highest high over the last n bars.
func (v *View) High(n int) (float64, bool) {
	return windowMax(v.highs, n)
}

// Low returns the lowest low over the last n bars.
func (v *View) Low(n int) (float64, bool) {
	return windowMin(v.lows, n)
}

// Range returns High(n) - Low(n).
func (v *View) Range(n int) (float64, bool) {
	hi, ok := v.High(n)
	if !ok {
		return 0, false
	}
	lo, ok := v.Low(n)
	if !ok {
		return 0, false
	}
	return hi - lo, true
}

// AvgVolume returns the mean traded volume over the last n bars.
func (v *View) AvgVolume(n int) (float64, bool) {
	if n <= 0 || n > len(v.volume) {
		return 0, false
	}
	tail := v.volume[len(v.volume)-n:]
	var sum float64
	for _, x := range tail {
		sum += x
	}
	return sum / float64(n), true
}

func windowMax(x []float64, n int) (float64, bool) {
	if n <= 0 || n > len(x) {
		return 0, false
	}
	tail := x[len(x)-n:]
	max := tail[0]
	for _, v := range tail[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

func windowMin(x []float64, n int) (float64, bool) {
	if n <= 0 || n > len(x) {
		return 0, false
	}
	tail := x[len(x)-n:]
	min := tail[0]
	for _, v := range tail[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}
