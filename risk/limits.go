package risk

// HaltReason names the circuit breaker that terminated a run. It is
// deliberate run termination, not an error, and is distinguishable from
// simply running out of data.
type HaltReason string

const (
	HaltNone       HaltReason = ""
	HaltDailyLoss  HaltReason = "DAILY_LOSS"
	HaltProfitLock HaltReason = "PROFIT_LOCK"
	HaltLossStreak HaltReason = "CONSECUTIVE_LOSSES"
)

// Limits are the circuit-breaker thresholds for one run. Zero values
// disable the corresponding breaker.
type Limits struct {
	MaxDailyLossPoints    float64 // halt when day P&L <= -this
	DailyProfitLockPoints float64 // halt when day P&L >= this
	MaxConsecutiveLosses  int     // halt after this many losing exits in a row

	// ATR acceptance band for entries: skip entries when volatility is
	// outside [ATRMin, ATRMax]. Not a halt condition.
	ATRMin float64
	ATRMax float64
}

// ATRInBand reports whether an entry is acceptable at the given ATR.
func (l Limits) ATRInBand(atr float64) bool {
	if l.ATRMin > 0 && atr < l.ATRMin {
		return false
	}
	if l.ATRMax > 0 && atr > l.ATRMax {
		return false
	}
	return true
}

// Tracker accumulates run-scoped risk state: running capital, cumulative
// daily point P&L and the consecutive-loss counter. One Tracker belongs to
// exactly one run and is never shared.
type Tracker struct {
	limits Limits

	capital      float64
	dayPoints    float64
	consecLosses int
}

func NewTracker(limits Limits, startingCapital float64) *Tracker {
	return &Tracker{limits: limits, capital: startingCapital}
}

func (t *Tracker) Capital() float64       { return t.capital }
func (t *Tracker) DayPoints() float64     { return t.dayPoints }
func (t *Tracker) ConsecutiveLosses() int { return t.consecLosses }

// Apply folds one closed trade into the tracker. The loss counter resets
// to 0 on any positive dollar P&L and increments by 1 otherwise.
func (t *Tracker) Apply(netPoints, dollars float64) {
	t.capital += dollars
	t.dayPoints += netPoints

	if dollars > 0 {
		t.consecLosses = 0
	} else {
		t.consecLosses++
	}
}

// Halt reports whether any circuit breaker has tripped. Checked at the
// top of every bar; a tripped breaker hard-terminates the run rather than
// merely blocking entries.
func (t *Tracker) Halt() (HaltReason, bool) {
	l := t.limits
	if l.MaxDailyLossPoints > 0 && t.dayPoints <= -l.MaxDailyLossPoints {
		return HaltDailyLoss, true
	}
	if l.DailyProfitLockPoints > 0 && t.dayPoints >= l.DailyProfitLockPoints {
		return HaltProfitLock, true
	}
	if l.MaxConsecutiveLosses > 0 && t.consecLosses >= l.MaxConsecutiveLosses {
		return HaltLossStreak, true
	}
	return HaltNone, false
}
