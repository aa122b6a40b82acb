package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/quantlab/market"
)

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in replay, live feeds, and backtests.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. If !Ready() it returns 0;
	// callers should always check Ready().
	Value() float64
}

// StreamingSMA is a streaming simple moving average over closes.
type StreamingSMA struct {
	period int
	window []float64
	sum    float64
}

func NewStreamingSMA(period int) *StreamingSMA {
	return &StreamingSMA{period: period, window: make([]float64, 0, period)}
}

func (m *StreamingSMA) Name() string { return fmt.Sprintf("MA(%d)", m.period) }
func (m *StreamingSMA) Warmup() int  { return m.period }

func (m *StreamingSMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *StreamingSMA) Update(b market.Bar) {
	m.window = append(m.window, b.Close)
	m.sum += b.Close
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *StreamingSMA) Ready() bool { return len(m.window) >= m.period }

func (m *StreamingSMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(len(m.window))
}

// StreamingEMA is a streaming exponential moving average over closes,
// seeded from the first close. Matches the batch EMA column.
type StreamingEMA struct {
	span  int
	mult  float64
	ema   float64
	count int
}

func NewStreamingEMA(span int) *StreamingEMA {
	return &StreamingEMA{span: span, mult: 2.0 / float64(span+1)}
}

func (e *StreamingEMA) Name() string { return fmt.Sprintf("EMA(%d)", e.span) }
func (e *StreamingEMA) Warmup() int  { return e.span }

func (e *StreamingEMA) Reset() {
	e.ema = 0
	e.count = 0
}

func (e *StreamingEMA) Update(b market.Bar) {
	if e.count == 0 {
		e.ema = b.Close
	} else {
		e.ema = (b.Close-e.ema)*e.mult + e.ema
	}
	e.count++
}

func (e *StreamingEMA) Ready() bool { return e.count >= e.span }

func (e *StreamingEMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// StreamingRSI is a streaming Wilder RSI over closes. Same zero-division
// policy as the batch RSI: average loss of zero means RSI = 100, or the
// neutral 50 when gains are zero too.
type StreamingRSI struct {
	period    int
	avgGain   float64
	avgLoss   float64
	prevClose float64
	count     int
}

func NewStreamingRSI(period int) *StreamingRSI {
	return &StreamingRSI{period: period}
}

func (r *StreamingRSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup is period+1 bars: the first bar only seeds the previous close.
func (r *StreamingRSI) Warmup() int { return r.period + 1 }

func (r *StreamingRSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.prevClose = 0
	r.count = 0
}

func (r *StreamingRSI) Update(b market.Bar) {
	if r.count == 0 {
		r.prevClose = b.Close
		r.count++
		return
	}

	delta := b.Close - r.prevClose
	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	alpha := 1.0 / float64(r.period)
	if r.count == 1 {
		r.avgGain = gain
		r.avgLoss = loss
	} else {
		r.avgGain += alpha * (gain - r.avgGain)
		r.avgLoss += alpha * (loss - r.avgLoss)
	}

	r.prevClose = b.Close
	r.count++
}

func (r *StreamingRSI) Ready() bool { return r.count >= r.period+1 }

func (r *StreamingRSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}

// StreamingATR is a streaming Wilder ATR.
type StreamingATR struct {
	period  int
	atr     float64
	prev    market.Bar
	hasPrev bool
	count   int
}

func NewStreamingATR(period int) *StreamingATR {
	return &StreamingATR{period: period}
}

func (a *StreamingATR) Name() string { return fmt.Sprintf("ATR(%d)", a.period) }
func (a *StreamingATR) Warmup() int  { return a.period }

func (a *StreamingATR) Reset() {
	a.atr = 0
	a.hasPrev = false
	a.count = 0
}

func (a *StreamingATR) Update(b market.Bar) {
	tr := b.High - b.Low
	if a.hasPrev {
		tr = math.Max(tr, math.Max(math.Abs(b.High-a.prev.Close), math.Abs(b.Low-a.prev.Close)))
	}

	if a.count == 0 {
		a.atr = tr
	} else {
		a.atr += (tr - a.atr) / float64(a.period)
	}

	a.prev = b
	a.hasPrev = true
	a.count++
}

func (a *StreamingATR) Ready() bool { return a.count >= a.period }

func (a *StreamingATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.atr
}

// StreamingLevel tracks rolling support/resistance excluding the current
// bar: Resistance()/Support() describe the window bars preceding the bar
// most recently passed to Update.
type StreamingLevel struct {
	window int
	highs  []float64
	lows   []float64
	res    float64
	sup    float64
	ready  bool
}

func NewStreamingLevel(window int) *StreamingLevel {
	return &StreamingLevel{window: window}
}

func (l *StreamingLevel) Name() string { return fmt.Sprintf("Level(%d)", l.window) }
func (l *StreamingLevel) Warmup() int  { return l.window + 1 }

func (l *StreamingLevel) Reset() {
	l.highs = l.highs[:0]
	l.lows = l.lows[:0]
	l.ready = false
}

func (l *StreamingLevel) Update(b market.Bar) {
	if len(l.highs) >= l.window {
		// Window full: current levels describe the bars before b.
		l.res, l.sup = maxOf(l.highs), minOf(l.lows)
		l.ready = true
		l.highs = l.highs[1:]
		l.lows = l.lows[1:]
	}
	l.highs = append(l.highs, b.High)
	l.lows = append(l.lows, b.Low)
}

func (l *StreamingLevel) Ready() bool { return l.ready }

// Value returns the resistance level; use Support for the other side.
func (l *StreamingLevel) Value() float64 { return l.Resistance() }

func (l *StreamingLevel) Resistance() float64 {
	if !l.ready {
		return 0
	}
	return l.res
}

func (l *StreamingLevel) Support() float64 {
	if !l.ready {
		return 0
	}
	return l.sup
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
