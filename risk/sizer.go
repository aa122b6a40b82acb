// Package risk provides position sizing and run-level risk limits for
// futures backtests.
package risk

import "math"

// Sizer converts account risk into an integer contract count.
type Sizer struct {
	Fraction     float64 // fraction of capital risked per trade, e.g. 0.005
	PointValue   float64 // dollars per price point per contract
	MinContracts int
	MaxContracts int
}

// Contracts returns floor(capital*Fraction / (stopPoints*PointValue))
// clamped to [MinContracts, MaxContracts].
//
// Fails closed: a zero or negative stop distance returns 0 contracts, so a
// degenerate stop can never size a trade. Callers must pass *current*
// capital, since sizing compounds with realized P&L.
func (z Sizer) Contracts(capital, stopPoints float64) int {
	if stopPoints <= 0 || z.PointValue <= 0 || capital <= 0 || z.Fraction <= 0 {
		return 0
	}

	riskDollars := capital * z.Fraction
	perContract := stopPoints * z.PointValue
	n := int(math.Floor(riskDollars / perContract))

	if n < z.MinContracts {
		n = z.MinContracts
	}
	if z.MaxContracts > 0 && n > z.MaxContracts {
		n = z.MaxContracts
	}
	return n
}
