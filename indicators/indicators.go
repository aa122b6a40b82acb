// Package indicators provides technical analysis indicators computed over
// bar series.
//
// Batch functions return one value per input bar, aligned by index, with
// NaN marking the warm-up span where the value is undefined. Callers must
// check Defined() and never act on an undefined value.
package indicators

import (
	"math"

	"github.com/rustyeddy/quantlab/market"
)

// Undefined is the sentinel for "indicator not available yet".
var Undefined = math.NaN()

// Defined reports whether v carries a real indicator value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Periods configures the columns of a Frame.
type Periods struct {
	ShortMA int // simple MA
	LongMA  int
	FastEMA int
	SlowEMA int
	RSI     int
	ATR     int
	Level   int // rolling support/resistance window
}

// DefaultPeriods mirrors the research defaults: MA 20/50, EMA 8/21,
// RSI 14, ATR 14, 20-bar levels.
func DefaultPeriods() Periods {
	return Periods{
		ShortMA: 20,
		LongMA:  50,
		FastEMA: 8,
		SlowEMA: 21,
		RSI:     14,
		ATR:     14,
		Level:   20,
	}
}

// Frame holds per-bar derived values aligned 1:1 with a Series.
type Frame struct {
	Periods Periods

	ShortMA    []float64
	LongMA     []float64
	FastEMA    []float64
	SlowEMA    []float64
	RSI        []float64
	ATR        []float64
	Support    []float64
	Resistance []float64
}

// NewFrame computes all columns for the series.
func NewFrame(s market.Series, p Periods) *Frame {
	closes := s.Closes()
	return &Frame{
		Periods:    p,
		ShortMA:    SMA(closes, p.ShortMA),
		LongMA:     SMA(closes, p.LongMA),
		FastEMA:    EMA(closes, p.FastEMA),
		SlowEMA:    EMA(closes, p.SlowEMA),
		RSI:        RSI(closes, p.RSI),
		ATR:        ATR(s, p.ATR),
		Support:    RollingLow(s, p.Level),
		Resistance: RollingHigh(s, p.Level),
	}
}

// Warmup returns the first index at which every column is defined. All
// earlier bars carry at least one undefined value and are ineligible for
// entry decisions.
func (f *Frame) Warmup() int {
	// First defined index per column: SMA/EMA/ATR at period-1, RSI at
	// period (needs one delta in memory), levels at window (shifted).
	w := f.Periods.ShortMA - 1
	for _, p := range []int{f.Periods.LongMA - 1, f.Periods.FastEMA - 1,
		f.Periods.SlowEMA - 1, f.Periods.ATR - 1, f.Periods.RSI, f.Periods.Level} {
		if p > w {
			w = p
		}
	}
	return w
}

// Ready reports whether every column is defined at index i.
func (f *Frame) Ready(i int) bool {
	if i < 0 || i >= len(f.ShortMA) {
		return false
	}
	return Defined(f.ShortMA[i]) && Defined(f.LongMA[i]) &&
		Defined(f.FastEMA[i]) && Defined(f.SlowEMA[i]) &&
		Defined(f.RSI[i]) && Defined(f.ATR[i]) &&
		Defined(f.Support[i]) && Defined(f.Resistance[i])
}

func undefinedSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Undefined
	}
	return out
}
