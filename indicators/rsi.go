package indicators

// RSI returns the Relative Strength Index over close-to-close deltas,
// smoothed with Wilder's alpha = 1/period.
//
// Zero-division policy: when the smoothed average loss is exactly zero
// the market has shown no down moves in memory, and RSI is defined as
// 100; when gains are also zero (a flat market) RSI is the neutral 50.
// This is the single canonical rule used everywhere; no epsilon
// substitution.
//
// The first defined value sits at index == period, since the first delta
// exists at index 1.
func RSI(values []float64, period int) []float64 {
	out := undefinedSlice(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64

	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		if i == 1 {
			avgGain = gain
			avgLoss = loss
		} else {
			avgGain += alpha * (gain - avgGain)
			avgLoss += alpha * (loss - avgLoss)
		}

		if i < period {
			continue
		}
		if avgLoss == 0 {
			if avgGain == 0 {
				out[i] = 50
			} else {
				out[i] = 100
			}
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
