package indicators

// MACDResult holds the three MACD outputs, each of length len(x).
type MACDResult struct {
	MACDLine  []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the Moving Average Convergence Divergence: the difference
// between a fast and slow EMA, its own EMA (the signal line), and their
// difference (the histogram).
func MACD(x []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDResult{}, ErrInvalidArgument
	}
	if fast >= slow {
		return MACDResult{}, ErrInvalidArgument
	}
	if slow > len(x) || signal > len(x) {
		return MACDResult{}, ErrInvalidArgument
	}

	emaFast, err := EMA(x, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := EMA(x, slow)
	if err != nil {
		return MACDResult{}, err
	}

	macdLine := make([]float64, len(x))
	for i := range x {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	signalLine, err := EMA(macdLine, signal)
	if err != nil {
		return MACDResult{}, err
	}

	histogram := make([]float64, len(x))
	for i := range x {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDResult{MACDLine: macdLine, Signal: signalLine, Histogram: histogram}, nil
}
