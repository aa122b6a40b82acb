package signal

import (
	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
)

// Breakout signals when the close escapes the rolling range: above
// resistance buys, below support sells. The levels already exclude the
// current bar, so a bar cannot break out of its own high.
type Breakout struct{}

func (Breakout) Name() string { return "breakout" }

func (Breakout) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	res, sup := f.Resistance[i], f.Support[i]
	if !indicators.Defined(res) || !indicators.Defined(sup) {
		return hold
	}
	c := s[i].Close
	switch {
	case c > res:
		return Result{Buy, "breakout_up"}
	case c < sup:
		return Result{Sell, "breakout_down"}
	}
	return hold
}

// MACross is the state-based crossing rule: the short MA moving through
// the long MA on this bar. It needs the previous bar's values, so bar 0
// never signals.
type MACross struct{}

func (MACross) Name() string { return "ma_cross" }

func (MACross) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	if i < 1 {
		return hold
	}
	sNow, lNow := f.ShortMA[i], f.LongMA[i]
	sPrev, lPrev := f.ShortMA[i-1], f.LongMA[i-1]
	if !indicators.Defined(sNow) || !indicators.Defined(lNow) ||
		!indicators.Defined(sPrev) || !indicators.Defined(lPrev) {
		return hold
	}
	switch {
	case sNow > lNow && sPrev <= lPrev:
		return Result{Buy, "ma_cross_up"}
	case sNow < lNow && sPrev >= lPrev:
		return Result{Sell, "ma_cross_down"}
	}
	return hold
}

// MATrend is the non-crossing variant used by the simple strategy: short
// MA currently above long MA buys, below sells. It fires on every bar of
// a trend, which makes it order-sensitive inside a Chain: place it after
// rules that should pre-empt it.
type MATrend struct{}

func (MATrend) Name() string { return "ma_trend" }

func (MATrend) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	sNow, lNow := f.ShortMA[i], f.LongMA[i]
	if !indicators.Defined(sNow) || !indicators.Defined(lNow) {
		return hold
	}
	switch {
	case sNow > lNow:
		return Result{Buy, "ma_trend_up"}
	case sNow < lNow:
		return Result{Sell, "ma_trend_down"}
	}
	return hold
}

// EMACross is the crossing rule over the fast/slow EMA columns.
type EMACross struct{}

func (EMACross) Name() string { return "ema_cross" }

func (EMACross) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	if i < 1 {
		return hold
	}
	fNow, sNow := f.FastEMA[i], f.SlowEMA[i]
	fPrev, sPrev := f.FastEMA[i-1], f.SlowEMA[i-1]
	if !indicators.Defined(fNow) || !indicators.Defined(sNow) ||
		!indicators.Defined(fPrev) || !indicators.Defined(sPrev) {
		return hold
	}
	switch {
	case fNow > sNow && fPrev <= sPrev:
		return Result{Buy, "ema_cross_up"}
	case fNow < sNow && fPrev >= sPrev:
		return Result{Sell, "ema_cross_down"}
	}
	return hold
}

// RSIBounds buys oversold (RSI below the low bound) and sells overbought.
type RSIBounds struct {
	Oversold   float64 // default 30
	Overbought float64 // default 70
}

func NewRSIBounds() RSIBounds { return RSIBounds{Oversold: 30, Overbought: 70} }

func (RSIBounds) Name() string { return "rsi_bounds" }

func (g RSIBounds) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	r := f.RSI[i]
	if !indicators.Defined(r) {
		return hold
	}
	lo, hi := g.Oversold, g.Overbought
	if lo == 0 && hi == 0 {
		lo, hi = 30, 70
	}
	switch {
	case r < lo:
		return Result{Buy, "rsi_oversold"}
	case r > hi:
		return Result{Sell, "rsi_overbought"}
	}
	return hold
}

// Pullback looks for a retrace into an N-bar impulse: after an up
// impulse, a close at or below the retrace level while still above the
// impulse trough buys; the mirror case sells. Levels come from the
// rolling close extremes of the window preceding the current bar.
type Pullback struct {
	Lookback int     // impulse window, default 10
	Retrace  float64 // fraction of the impulse range, default 0.5
}

func NewPullback() Pullback { return Pullback{Lookback: 10, Retrace: 0.5} }

func (Pullback) Name() string { return "pullback" }

func (g Pullback) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	look := g.Lookback
	if look <= 0 {
		look = 10
	}
	retrace := g.Retrace
	if retrace <= 0 || retrace >= 1 {
		retrace = 0.5
	}
	if i < look+1 {
		return hold
	}

	// Close extremes over the look bars ending at i-1.
	peak, trough := s[i-1].Close, s[i-1].Close
	for j := i - look; j < i; j++ {
		c := s[j].Close
		if c > peak {
			peak = c
		}
		if c < trough {
			trough = c
		}
	}
	if peak == trough {
		return hold
	}

	c := s[i].Close
	retraceUp := trough + (peak-trough)*retrace
	retraceDown := peak - (peak-trough)*retrace

	switch {
	case c <= retraceUp && c > trough:
		return Result{Buy, "pullback_long"}
	case c >= retraceDown && c < peak:
		return Result{Sell, "pullback_short"}
	}
	return hold
}
