package indicators

import (
	"math"

	"github.com/rustyeddy/quantlab/market"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// Index 0 has no previous close and falls back to high-low.
func TrueRange(s market.Series) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		tr := b.High - b.Low
		if i > 0 {
			prev := s[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// ATR returns the Average True Range smoothed with Wilder's
// alpha = 1/period, seeded from the first true range. Values before index
// period-1 are undefined.
func ATR(s market.Series, period int) []float64 {
	out := undefinedSlice(len(s))
	if period <= 0 || len(s) < period {
		return out
	}

	tr := TrueRange(s)
	alpha := 1.0 / float64(period)
	atr := tr[0]
	for i := 1; i < len(tr); i++ {
		atr += alpha * (tr[i] - atr)
		if i >= period-1 {
			out[i] = atr
		}
	}
	if period == 1 {
		out[0] = tr[0]
	}
	return out
}
