package indicators

// RSI returns the Relative Strength Index of x over period, with output
// length len(x). Indices [0, period-1] are filled with the neutral warm-up
// value 50.0. From index period onward it uses Wilder smoothing seeded by
// the average of the first period gains/losses.
//
// RSI needs period+1 prices to produce its first real value (period diffs),
// so length <= period is treated as insufficient data, same as any other
// period > length case.
func RSI(x []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidArgument
	}
	if len(x) <= period {
		return nil, ErrInvalidArgument
	}

	out := make([]float64, len(x))
	for i := 0; i < period; i++ {
		out[i] = 50.0
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		diff := x[i] - x[i-1]
		if diff > 0 {
			gainSum += diff
		} else {
			lossSum += -diff
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(x); i++ {
		diff := x[i] - x[i-1]
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
