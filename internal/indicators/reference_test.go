package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const crossCheckEpsilon = 1e-3

// syntheticSeries builds deterministic price-like vectors of varying shape
// (trend, oscillation, mixed) so the cross-check exercises more than a
// single straight line, without pulling in math/rand.
func syntheticSeries(n int, base, trend, amplitude, freq float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = base + trend*float64(i) + amplitude*math.Sin(freq*float64(i))
	}
	return out
}

func testVectors() map[string][]float64 {
	return map[string][]float64{
		"flat":          syntheticSeries(60, 100, 0, 0, 0),
		"uptrend":       syntheticSeries(60, 100, 0.5, 0, 0),
		"downtrend":     syntheticSeries(60, 200, -0.8, 0, 0),
		"oscillating":   syntheticSeries(90, 100, 0, 5, 0.3),
		"trendWithNoisyOsc": syntheticSeries(120, 50, 0.1, 2.5, 0.7),
	}
}

func requireCloseSlices(t *testing.T, got, want []float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		require.InDeltaf(t, want[i], got[i], crossCheckEpsilon, "index %d: got %v want %v", i, got[i], want[i])
	}
}

func TestCrossCheck_SMA(t *testing.T) {
	for name, series := range testVectors() {
		for _, period := range []int{3, 5, 14} {
			primary, err := SMA(series, period)
			require.NoError(t, err)
			reference, err := ReferenceSMA(series, period)
			require.NoError(t, err)
			requireCloseSlices(t, primary, reference)
			_ = name
		}
	}
}

func TestCrossCheck_EMA(t *testing.T) {
	for _, series := range testVectors() {
		for _, period := range []int{3, 5, 14} {
			primary, err := EMA(series, period)
			require.NoError(t, err)
			reference, err := ReferenceEMA(series, period)
			require.NoError(t, err)
			requireCloseSlices(t, primary, reference)
		}
	}
}

func TestCrossCheck_RSI(t *testing.T) {
	for _, series := range testVectors() {
		for _, period := range []int{5, 14} {
			if len(series) <= period {
				continue
			}
			primary, err := RSI(series, period)
			require.NoError(t, err)
			reference, err := ReferenceRSI(series, period)
			require.NoError(t, err)
			requireCloseSlices(t, primary, reference)
		}
	}
}

func TestCrossCheck_MACD(t *testing.T) {
	for _, series := range testVectors() {
		primary, err := MACD(series, 12, 26, 9)
		if err != nil {
			continue // series shorter than slow/signal periods
		}
		reference, err := ReferenceMACD(series, 12, 26, 9)
		require.NoError(t, err)
		requireCloseSlices(t, primary.MACDLine, reference.MACDLine)
		requireCloseSlices(t, primary.Signal, reference.Signal)
		requireCloseSlices(t, primary.Histogram, reference.Histogram)
	}
}

func TestCrossCheck_Bollinger(t *testing.T) {
	for _, series := range testVectors() {
		for _, period := range []int{10, 20} {
			if period > len(series) {
				continue
			}
			primary, err := Bollinger(series, period, 2.0)
			require.NoError(t, err)
			reference, err := ReferenceBollinger(series, period, 2.0)
			require.NoError(t, err)
			requireCloseSlices(t, primary.Middle, reference.Middle)
			requireCloseSlices(t, primary.Upper, reference.Upper)
			requireCloseSlices(t, primary.Lower, reference.Lower)
		}
	}
}

func TestCrossCheck_InvalidArgumentsAgree(t *testing.T) {
	series := syntheticSeries(10, 100, 0, 0, 0)

	_, err1 := SMA(series, 0)
	_, err2 := ReferenceSMA(series, 0)
	require.ErrorIs(t, err1, ErrInvalidArgument)
	require.ErrorIs(t, err2, ErrInvalidArgument)

	_, err1 = RSI(series, 20)
	_, err2 = ReferenceRSI(series, 20)
	require.ErrorIs(t, err1, ErrInvalidArgument)
	require.ErrorIs(t, err2, ErrInvalidArgument)
}
