package indicators

import "math"

// BollingerResult holds the three Bollinger Band outputs, each of length
// len(x).
type BollingerResult struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands: a period-p simple moving average
// middle band and upper/lower bands at numStdDev population standard
// deviations from it. Unlike the bare SMA function, the output here is
// full-length: for i < period-1 all three bands equal x[i] (there isn't
// enough history yet for a real band).
func Bollinger(x []float64, period int, numStdDev float64) (BollingerResult, error) {
	if period <= 0 {
		return BollingerResult{}, ErrInvalidArgument
	}
	if period > len(x) {
		return BollingerResult{}, ErrInvalidArgument
	}
	if numStdDev <= 0 {
		return BollingerResult{}, ErrInvalidArgument
	}

	n := len(x)
	middle := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)

	for i := 0; i < period-1; i++ {
		middle[i] = x[i]
		upper[i] = x[i]
		lower[i] = x[i]
	}

	for i := period - 1; i < n; i++ {
		window := x[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)

		var variance float64
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		variance /= float64(period)
		std := math.Sqrt(variance)

		middle[i] = mean
		upper[i] = mean + numStdDev*std
		lower[i] = mean - numStdDev*std
	}

	return BollingerResult{Middle: middle, Upper: upper, Lower: lower}, nil
}
