// Package signal maps indicator values at a single bar to discrete
// BUY/SELL/HOLD decisions.
package signal

import (
	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
)

// Action is a discrete trading signal.
type Action int8

const (
	Hold Action = 0
	Buy  Action = +1
	Sell Action = -1
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Result pairs an action with a human-readable reason tag.
type Result struct {
	Action Action
	Reason string
}

var hold = Result{Action: Hold, Reason: "neutral"}

// Generator evaluates a rule at bar i of a series. Implementations are
// pure: no state survives between calls, and a rule may only look at bar
// i and earlier (crossing rules look at i-1). A generator returns Hold
// whenever an indicator it needs is undefined.
type Generator interface {
	Name() string
	Evaluate(s market.Series, f *indicators.Frame, i int) Result
}

// Chain evaluates generators in fixed priority order and returns the
// first non-Hold result. No voting, no averaging.
type Chain []Generator

func (c Chain) Evaluate(s market.Series, f *indicators.Frame, i int) Result {
	for _, g := range c {
		if r := g.Evaluate(s, f, i); r.Action != Hold {
			return r
		}
	}
	return hold
}
