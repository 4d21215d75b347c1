package indicators

// EMA returns the exponential moving average of x over period, with output
// length len(x): indices [0, period-2] are filled with the seed value
// (SMA(period)[0]) as a neutral warm-up, index period-1 holds the seed
// itself, and index period onward follows the standard recurrence
// e[i] = alpha*x[i] + (1-alpha)*e[i-1].
func EMA(x []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidArgument
	}
	if period > len(x) {
		return nil, ErrInvalidArgument
	}

	sma, err := SMA(x, period)
	if err != nil {
		return nil, err
	}
	seed := sma[0]

	out := make([]float64, len(x))
	for i := 0; i < period-1; i++ {
		out[i] = seed
	}
	out[period-1] = seed

	alpha := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(x); i++ {
		out[i] = alpha*x[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}
