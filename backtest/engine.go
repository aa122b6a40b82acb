package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/internal/id"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/risk"
	"github.com/rustyeddy/quantlab/signal"
)

// Exec holds the execution parameters of a run.
//
// Fill model (fixed, no look-ahead): entries and signal/time exits fill
// at the current bar's close; stop and target fill at their level, with
// the stop assumed worst-case even if the bar gapped through it.
type Exec struct {
	// StopATR sets the initial stop distance to StopATR * ATR at entry.
	// <= 0 disables stops and targets entirely (the simple variant, which
	// exits only on opposite signals and time).
	StopATR float64

	// RewardRisk sets the target at RewardRisk * stop distance.
	RewardRisk float64

	// TrailATR tightens the stop each bar by TrailATR * current ATR.
	// <= 0 disables trailing.
	TrailATR float64

	// MinStopPoints floors the ATR-derived stop distance.
	MinStopPoints float64

	// MaxHoldBars forces an exit after this many bars in a position.
	// <= 0 disables the time exit.
	MaxHoldBars int

	// FixedContracts bypasses risk sizing when > 0.
	FixedContracts int

	// FeePoints models fees plus slippage as points per round trip,
	// subtracted from gross point P&L before dollar conversion.
	FeePoints float64

	// FeePerContractSide is an additional dollar fee per contract per
	// side (charged twice per round trip).
	FeePerContractSide float64

	// Cooldown suppresses a new entry inside the same timestamp bucket
	// as the previous entry. Defaults to one minute.
	Cooldown time.Duration
}

// Engine drives one backtest run. Each run owns its state exclusively;
// create a new Engine per run.
type Engine struct {
	Sizer   risk.Sizer
	Limits  risk.Limits
	Exec    Exec
	Capital float64 // starting capital
}

// Run executes a single sequential pass over the series. The frame must
// be aligned 1:1 with the series. At most one state transition happens
// per bar: a bar that closes a position never opens another.
func (e *Engine) Run(s market.Series, f *indicators.Frame, chain signal.Chain) (Result, error) {
	if len(s) == 0 {
		return Result{}, fmt.Errorf("backtest: empty series")
	}
	if f == nil || len(f.ATR) != len(s) {
		return Result{}, fmt.Errorf("backtest: frame not aligned with series (%d bars)", len(s))
	}
	if len(chain) == 0 {
		return Result{}, fmt.Errorf("backtest: no signal generators")
	}
	if e.Sizer.PointValue <= 0 {
		return Result{}, fmt.Errorf("backtest: point value must be positive")
	}

	cooldown := e.Exec.Cooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	tracker := risk.NewTracker(e.Limits, e.Capital)

	res := Result{Capital: e.Capital}
	var pos Position
	var cumPoints, cumDollars float64
	var lastEntryBucket time.Time

	for i, bar := range s {
		// Circuit breakers hard-terminate the run. Checked before the
		// bar is processed, so nothing is emitted from here on.
		if reason, halted := tracker.Halt(); halted {
			res.Halt = reason
			break
		}

		exitedThisBar := false

		if pos.Open {
			pos.BarsHeld++

			// Trailing stop only ever tightens. An undefined ATR holds
			// the prior stop unchanged.
			if e.Exec.TrailATR > 0 && pos.Stop != 0 && indicators.Defined(f.ATR[i]) {
				trail := e.Exec.TrailATR * f.ATR[i]
				if pos.Side == Long {
					if t := bar.Close - trail; t > pos.Stop {
						pos.Stop = t
					}
				} else {
					if t := bar.Close + trail; t < pos.Stop {
						pos.Stop = t
					}
				}
			}

			if px, reason, hit := checkExit(pos, bar); hit {
				e.close(&pos, &res, tracker, bar.Time, px, reason, &cumPoints, &cumDollars)
				exitedThisBar = true
			}

			if pos.Open {
				sig := chain.Evaluate(s, f, i)
				opposite := (pos.Side == Long && sig.Action == signal.Sell) ||
					(pos.Side == Short && sig.Action == signal.Buy)
				switch {
				case opposite:
					e.close(&pos, &res, tracker, bar.Time, bar.Close, ExitOppositeSignal, &cumPoints, &cumDollars)
					exitedThisBar = true
				case e.Exec.MaxHoldBars > 0 && pos.BarsHeld >= e.Exec.MaxHoldBars:
					e.close(&pos, &res, tracker, bar.Time, bar.Close, ExitTimeExit, &cumPoints, &cumDollars)
					exitedThisBar = true
				}
			}
		}

		if !pos.Open && !exitedThisBar {
			e.tryEnter(s, f, chain, i, bar, tracker, &pos, &lastEntryBucket, cooldown)
		}

		res.Equity = append(res.Equity, EquityPoint{
			Time:       bar.Time,
			CumPoints:  cumPoints,
			CumDollars: cumDollars,
			Capital:    tracker.Capital(),
		})
	}

	res.Capital = tracker.Capital()
	res.Summary = Summarize(res.Trades)
	return res, nil
}

func (e *Engine) tryEnter(s market.Series, f *indicators.Frame, chain signal.Chain,
	i int, bar market.Bar, tracker *risk.Tracker,
	pos *Position, lastEntryBucket *time.Time, cooldown time.Duration) {

	// Warm-up bars never produce entries.
	if !f.Ready(i) {
		return
	}

	atr := f.ATR[i]
	if !e.Limits.ATRInBand(atr) {
		return
	}

	bucket := bar.Time.Truncate(cooldown)
	if !lastEntryBucket.IsZero() && bucket.Equal(*lastEntryBucket) {
		return
	}

	sig := chain.Evaluate(s, f, i)
	if sig.Action == signal.Hold {
		return
	}

	var stop, target, stopDist float64
	if e.Exec.StopATR > 0 {
		stopDist = e.Exec.StopATR * atr
		if stopDist < e.Exec.MinStopPoints {
			stopDist = e.Exec.MinStopPoints
		}
	}

	contracts := e.Exec.FixedContracts
	if contracts <= 0 {
		// Risk sizing needs a stop distance; Contracts fails closed on
		// zero, so a disabled stop sizes no trade.
		contracts = e.Sizer.Contracts(tracker.Capital(), stopDist)
	}
	if contracts < 1 {
		return
	}

	side := Long
	if sig.Action == signal.Sell {
		side = Short
	}

	entry := bar.Close
	if stopDist > 0 {
		rr := e.Exec.RewardRisk
		if rr <= 0 {
			rr = 1.5
		}
		if side == Long {
			stop = entry - stopDist
			target = entry + rr*stopDist
		} else {
			stop = entry + stopDist
			target = entry - rr*stopDist
		}
	}

	*pos = Position{
		Open:      true,
		Side:      side,
		Entry:     entry,
		EntryTime: bar.Time,
		EntryIdx:  i,
		Stop:      stop,
		Target:    target,
		Contracts: contracts,
	}
	*lastEntryBucket = bucket
}

func (e *Engine) close(pos *Position, res *Result, tracker *risk.Tracker,
	t time.Time, exit float64, reason ExitReason, cumPoints, cumDollars *float64) {

	grossPoints := (exit - pos.Entry) * float64(pos.Side)
	netPoints := grossPoints - e.Exec.FeePoints
	dollarFees := e.Exec.FeePerContractSide * float64(pos.Contracts) * 2
	dollars := netPoints*e.Sizer.PointValue*float64(pos.Contracts) - dollarFees

	trade := Trade{
		ID:        id.New(),
		Side:      pos.Side,
		EntryTime: pos.EntryTime,
		ExitTime:  t,
		Entry:     pos.Entry,
		Exit:      exit,
		Contracts: pos.Contracts,
		Points:    netPoints,
		Dollars:   dollars,
		Fees:      dollarFees,
		Reason:    reason,
		BarsHeld:  pos.BarsHeld,
	}
	res.Trades = append(res.Trades, trade)

	tracker.Apply(netPoints*float64(pos.Contracts), dollars)
	*cumPoints += netPoints * float64(pos.Contracts)
	*cumDollars += dollars

	*pos = Position{}
}

// checkExit models stop/target hits within a bar's high/low range. When
// both are touched in the same bar we assume stop-first (worst case for
// the trader), and the stop fills at its level even if the bar gapped
// through it.
func checkExit(pos Position, bar market.Bar) (exitPx float64, reason ExitReason, hit bool) {
	hasStop := pos.Stop != 0
	hasTarget := pos.Target != 0

	switch pos.Side {
	case Long:
		if hasStop && bar.Low <= pos.Stop {
			return pos.Stop, ExitStopLoss, true
		}
		if hasTarget && bar.High >= pos.Target {
			return pos.Target, ExitTakeProfit, true
		}
	case Short:
		if hasStop && bar.High >= pos.Stop {
			return pos.Stop, ExitStopLoss, true
		}
		if hasTarget && bar.Low <= pos.Target {
			return pos.Target, ExitTakeProfit, true
		}
	}
	return 0, "", false
}
