package indicators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestView_BasicQueries(t *testing.T) {
	closes := syntheticSeries(30, 100, 0.2, 1.0, 0.4)
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	volume := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c + 1
		lows[i] = c - 1
		volume[i] = float64(1000 + i)
	}

	v := NewView(closes, highs, lows, volume)

	sma, ok := v.SMA(5)
	require.True(t, ok)
	want, err := SMA(closes, 5)
	require.NoError(t, err)
	require.InDelta(t, want[len(want)-1], sma, crossCheckEpsilon)

	_, ok = v.SMA(1000)
	require.False(t, ok)

	hi, ok := v.High(10)
	require.True(t, ok)
	lo, ok := v.Low(10)
	require.True(t, ok)
	rng, ok := v.Range(10)
	require.True(t, ok)
	require.InDelta(t, hi-lo, rng, 1e-9)

	avgVol, ok := v.AvgVolume(5)
	require.True(t, ok)
	require.Greater(t, avgVol, 0.0)

	_, _, _, ok = v.MACD(12, 26, 9)
	require.True(t, ok)

	_, _, _, ok = v.MACD(12, 26, 40)
	require.False(t, ok) // signal period longer than the series

	_, _, _, ok = v.Bollinger(10, 2.0)
	require.True(t, ok)
}
