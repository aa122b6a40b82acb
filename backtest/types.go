// Package backtest simulates rule-based strategies over historical bar
// series: one position at a time, bar-by-bar exits, risk-based sizing and
// run-level circuit breakers.
package backtest

import (
	"time"

	"github.com/rustyeddy/quantlab/risk"
)

// Side: +1 long, -1 short.
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "SHORT"
	}
	return "LONG"
}

// ParseSide maps the journal spelling back to a Side.
func ParseSide(v string) Side {
	if v == "SHORT" {
		return Short
	}
	return Long
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitOppositeSignal ExitReason = "OPPOSITE_SIGNAL"
	ExitTimeExit       ExitReason = "TIME_EXIT"
)

// Position is the single open position of a run. Created on entry,
// mutated each bar (trailing stop, bars held), destroyed on exit.
type Position struct {
	Open      bool
	Side      Side
	Entry     float64
	EntryTime time.Time
	EntryIdx  int
	Stop      float64 // 0 means none
	Target    float64 // 0 means none
	Contracts int
	BarsHeld  int
}

// Trade is the immutable record of a closed position.
//
// Points is the net per-contract point P&L (gross minus the round-trip
// fee in points); Dollars = Points * pointValue * Contracts minus dollar
// fees, exactly.
type Trade struct {
	ID        string
	Side      Side
	EntryTime time.Time
	ExitTime  time.Time
	Entry     float64
	Exit      float64
	Contracts int
	Points    float64
	Dollars   float64
	Fees      float64 // dollar fees included in Dollars
	Reason    ExitReason
	BarsHeld  int
}

// EquityPoint is one row of the equity curve: exactly one per processed
// bar, trade or no trade.
type EquityPoint struct {
	Time       time.Time
	CumPoints  float64 // contract-weighted net points, cumulative
	CumDollars float64
	Capital    float64
}

// Result is everything a run produces.
type Result struct {
	Trades  []Trade
	Equity  []EquityPoint
	Halt    risk.HaltReason // HaltNone when the run simply ran out of bars
	Capital float64         // final running capital
	Summary Summary
}
