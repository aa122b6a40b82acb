package indicators

import "github.com/rustyeddy/quantlab/market"

// RollingHigh returns, for each bar, the max high of the window bars
// immediately preceding it. The current bar is excluded so a breakout
// signal never compares a close against its own high (look-ahead bias).
// First defined index is window.
func RollingHigh(s market.Series, window int) []float64 {
	out := undefinedSlice(len(s))
	if window <= 0 {
		return out
	}
	for i := window; i < len(s); i++ {
		hi := s[i-window].High
		for j := i - window + 1; j < i; j++ {
			if s[j].High > hi {
				hi = s[j].High
			}
		}
		out[i] = hi
	}
	return out
}

// RollingLow is the support analogue of RollingHigh: min low over the
// window bars preceding the current one.
func RollingLow(s market.Series, window int) []float64 {
	out := undefinedSlice(len(s))
	if window <= 0 {
		return out
	}
	for i := window; i < len(s); i++ {
		lo := s[i-window].Low
		for j := i - window + 1; j < i; j++ {
			if s[j].Low < lo {
				lo = s[j].Low
			}
		}
		out[i] = lo
	}
	return out
}
