package indicators

import "math"

// This file is the "second, independently written" implementation
// this package requires for numeric cross-checking.
// It intentionally uses different code shapes than sma.go/ema.go/rsi.go/
// macd.go/bollinger.go (brute-force sums instead of sliding windows, a
// recursive EMA helper, a different RSI loop structure) so that a bug in
// one implementation's algebra is unlikely to also be present in the
// other. reference_test.go asserts agreement within 1e-3 at every index.

// ReferenceSMA recomputes each window mean from scratch, without the
// sliding-sum optimization SMA uses.
func ReferenceSMA(x []float64, period int) ([]float64, error) {
	if period <= 0 || period > len(x) {
		return nil, ErrInvalidArgument
	}
	out := make([]float64, len(x)-period+1)
	for i := period - 1; i < len(x); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += x[j]
		}
		out[i-period+1] = sum / float64(period)
	}
	return out, nil
}

// ReferenceEMA computes the EMA recursively via referenceEMAAt instead of
// an accumulating forward loop.
func ReferenceEMA(x []float64, period int) ([]float64, error) {
	if period <= 0 || period > len(x) {
		return nil, ErrInvalidArgument
	}
	sma, err := ReferenceSMA(x, period)
	if err != nil {
		return nil, err
	}
	seed := sma[0]
	alpha := 2.0 / (float64(period) + 1.0)

	out := make([]float64, len(x))
	for i := 0; i < period; i++ {
		out[i] = seed
	}
	for i := period; i < len(x); i++ {
		out[i] = referenceEMAAt(x, alpha, seed, period, i)
	}
	return out, nil
}

// referenceEMAAt unrolls the recurrence e[i] = alpha*x[i] + (1-alpha)*e[i-1]
// down to the seed, rather than reusing a running value.
func referenceEMAAt(x []float64, alpha, seed float64, period, i int) float64 {
	if i == period {
		return alpha*x[i] + (1-alpha)*seed
	}
	return alpha*x[i] + (1-alpha)*referenceEMAAt(x, alpha, seed, period, i-1)
}

// ReferenceRSI computes gains/losses with math.Max/math.Abs instead of
// branching, and folds the Wilder recurrence via a small state struct.
func ReferenceRSI(x []float64, period int) ([]float64, error) {
	if period <= 0 || len(x) <= period {
		return nil, ErrInvalidArgument
	}

	type wilder struct{ gain, loss float64 }
	seed := wilder{}
	for i := 1; i <= period; i++ {
		delta := x[i] - x[i-1]
		seed.gain += math.Max(delta, 0)
		seed.loss += math.Max(-delta, 0)
	}
	seed.gain /= float64(period)
	seed.loss /= float64(period)

	out := make([]float64, len(x))
	for i := range out[:period] {
		out[i] = 50.0
	}

	rsiOf := func(w wilder) float64 {
		if w.loss == 0 {
			return 100
		}
		rs := w.gain / w.loss
		return 100 - 100/(1+rs)
	}

	out[period] = rsiOf(seed)
	cur := seed
	for i := period + 1; i < len(x); i++ {
		delta := x[i] - x[i-1]
		gain, loss := math.Max(delta, 0), math.Max(-delta, 0)
		cur = wilder{
			gain: (cur.gain*float64(period-1) + gain) / float64(period),
			loss: (cur.loss*float64(period-1) + loss) / float64(period),
		}
		out[i] = rsiOf(cur)
	}
	return out, nil
}

// ReferenceMACD composes ReferenceEMA the same way MACD composes EMA, kept
// separate so a shared bug in EMA's own formula still gets exercised twice
// by two different call sites.
func ReferenceMACD(x []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return MACDResult{}, ErrInvalidArgument
	}
	if slow > len(x) || signal > len(x) {
		return MACDResult{}, ErrInvalidArgument
	}
	ef, err := ReferenceEMA(x, fast)
	if err != nil {
		return MACDResult{}, err
	}
	es, err := ReferenceEMA(x, slow)
	if err != nil {
		return MACDResult{}, err
	}
	line := make([]float64, len(x))
	for i := range x {
		line[i] = ef[i] - es[i]
	}
	sig, err := ReferenceEMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}
	hist := make([]float64, len(x))
	for i := range x {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{MACDLine: line, Signal: sig, Histogram: hist}, nil
}

// ReferenceBollinger computes variance via E[x^2]-E[x]^2 instead of the
// two-pass deviation-squared sum Bollinger uses.
func ReferenceBollinger(x []float64, period int, numStdDev float64) (BollingerResult, error) {
	if period <= 0 || period > len(x) || numStdDev <= 0 {
		return BollingerResult{}, ErrInvalidArgument
	}
	n := len(x)
	mid := make([]float64, n)
	up := make([]float64, n)
	lo := make([]float64, n)
	for i := 0; i < period-1; i++ {
		mid[i], up[i], lo[i] = x[i], x[i], x[i]
	}
	for i := period - 1; i < n; i++ {
		var sum, sumSq float64
		for j := i - period + 1; j <= i; j++ {
			sum += x[j]
			sumSq += x[j] * x[j]
		}
		mean := sum / float64(period)
		variance := sumSq/float64(period) - mean*mean
		if variance < 0 {
			variance = 0
		}
		std := math.Sqrt(variance)
		mid[i] = mean
		up[i] = mean + numStdDev*std
		lo[i] = mean - numStdDev*std
	}
	return BollingerResult{Middle: mid, Upper: up, Lower: lo}, nil
}
