package indicators

// SMA returns the arithmetic mean of the trailing period values.
// Indices before period-1 are undefined.
func SMA(values []float64, period int) []float64 {
	out := undefinedSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average with multiplier 2/(span+1),
// seeded from the first value. Indices before span-1 are treated as
// warm-up and left undefined so callers never act on a half-formed
// average.
func EMA(values []float64, span int) []float64 {
	out := undefinedSlice(len(values))
	if span <= 0 || len(values) < span {
		return out
	}

	mult := 2.0 / float64(span+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = (values[i]-ema)*mult + ema
		if i >= span-1 {
			out[i] = ema
		}
	}
	if span == 1 {
		out[0] = values[0]
	}
	return out
}
