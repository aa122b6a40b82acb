package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/risk"
	"github.com/rustyeddy/quantlab/signal"
)

var testPeriods = indicators.Periods{
	ShortMA: 3, LongMA: 4, FastEMA: 3, SlowEMA: 4, RSI: 3, ATR: 3, Level: 5,
}

var runBase = time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)

// flatSeries builds a flat market around level with optional close
// overrides at specific bars (high/low follow the close by +-0.5).
func flatSeries(t *testing.T, n int, level float64, overrides map[int]float64) market.Series {
	t.Helper()
	bars := make([]market.Bar, n)
	for i := range bars {
		c := level
		if v, ok := overrides[i]; ok {
			c = v
		}
		bars[i] = market.Bar{
			Time: runBase.Add(time.Duration(i) * time.Minute),
			Open: level, High: c + 0.5, Low: level - 0.5, Close: c, Volume: 100,
		}
	}
	if overridesHaveBelow(overrides, level) {
		for i := range bars {
			if bars[i].Close < bars[i].Low {
				bars[i].Low = bars[i].Close - 0.5
			}
		}
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)
	return s
}

func overridesHaveBelow(m map[int]float64, level float64) bool {
	for _, v := range m {
		if v < level {
			return true
		}
	}
	return false
}

func breakoutEngine() *Engine {
	return &Engine{
		Sizer:   risk.Sizer{Fraction: 0.005, PointValue: 5, MinContracts: 1, MaxContracts: 2},
		Capital: 50000,
		Exec: Exec{
			MaxHoldBars:    10,
			FixedContracts: 1,
		},
	}
}

func TestBreakoutTimeExitScenario(t *testing.T) {
	// 60 bars, flat 20-bar resistance at 100.5, clean breakout at bar 25,
	// then a gentle drift up with no reversal. Expect exactly one LONG
	// opened at bar 25's close and a TIME_EXIT at bar 35 (max hold 10).
	bars := make([]market.Bar, 60)
	for i := range bars {
		var c float64
		switch {
		case i < 25:
			c = 100
		case i == 25:
			c = 103
		default:
			c = 103 + 0.05*float64(i-25)
		}
		bars[i] = market.Bar{
			Time: runBase.Add(time.Duration(i) * time.Minute),
			Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 100,
		}
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)

	p := testPeriods
	p.Level = 20
	f := indicators.NewFrame(s, p)

	eng := breakoutEngine()
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, Long, tr.Side)
	assert.True(t, tr.EntryTime.Equal(s[25].Time))
	assert.Equal(t, s[25].Close, tr.Entry)
	assert.Equal(t, ExitTimeExit, tr.Reason)
	assert.True(t, tr.ExitTime.Equal(s[35].Time))
	assert.Equal(t, 10, tr.BarsHeld)

	// P&L computable literally from the two closes.
	assert.InDelta(t, s[35].Close-s[25].Close, tr.Points, 1e-9)
	assert.InDelta(t, tr.Points*5*1, tr.Dollars, 1e-9)

	// One equity point per processed bar, no halt.
	assert.Len(t, res.Equity, 60)
	assert.Equal(t, risk.HaltNone, res.Halt)
}

func TestNoEntryDuringWarmup(t *testing.T) {
	// A breakout-shaped close on bar 3, well before the frame is ready.
	s := flatSeries(t, 30, 100, map[int]float64{3: 106})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}, signal.MATrend{}, signal.NewRSIBounds()})
	require.NoError(t, err)

	warm := s[f.Warmup()].Time
	for _, tr := range res.Trades {
		assert.False(t, tr.EntryTime.Before(warm), "entry %s before warm-up end %s", tr.EntryTime, warm)
	}
}

func TestDollarPnLExact(t *testing.T) {
	s := flatSeries(t, 60, 100, map[int]float64{10: 103, 30: 103, 45: 96})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.FixedContracts = 2
	eng.Exec.FeePoints = 0.25
	eng.Exec.FeePerContractSide = 1.10
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	for _, tr := range res.Trades {
		gross := (tr.Exit - tr.Entry) * float64(tr.Side)
		assert.InDelta(t, gross-0.25, tr.Points, 1e-9)
		assert.InDelta(t, 1.10*float64(tr.Contracts)*2, tr.Fees, 1e-9)
		assert.InDelta(t, tr.Points*5*float64(tr.Contracts)-tr.Fees, tr.Dollars, 1e-9)
	}
}

func TestAtMostOnePositionAndNoSameBarReentry(t *testing.T) {
	s := flatSeries(t, 80, 100, map[int]float64{10: 103, 25: 96, 40: 103, 60: 96})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	require.Greater(t, len(res.Trades), 1)

	for i := 1; i < len(res.Trades); i++ {
		prev, cur := res.Trades[i-1], res.Trades[i]
		// Positions never overlap, and a bar that closed a trade never
		// opens the next one.
		assert.True(t, cur.EntryTime.After(prev.ExitTime),
			"trade %d entered %s, previous exited %s", i, cur.EntryTime, prev.ExitTime)
	}
}

func TestOppositeSignalExit(t *testing.T) {
	// Breakout up at bar 10, then a breakdown at bar 14 while holding.
	s := flatSeries(t, 40, 100, map[int]float64{10: 103, 14: 96})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.MaxHoldBars = 30
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	first := res.Trades[0]
	assert.Equal(t, Long, first.Side)
	assert.Equal(t, ExitOppositeSignal, first.Reason)
	assert.True(t, first.ExitTime.Equal(s[14].Time))
	assert.Equal(t, s[14].Close, first.Exit)

	// The bar that flipped us out never opens the reverse position.
	for _, tr := range res.Trades {
		assert.False(t, tr.EntryTime.Equal(s[14].Time))
	}
}

func TestStopTakesPriorityOverTargetSameBar(t *testing.T) {
	// Entry at bar 10, then a huge-range bar that touches both stop and
	// target: the engine must assume stop-first.
	bars := make([]market.Bar, 20)
	for i := range bars {
		var b market.Bar
		switch {
		case i == 10: // breakout entry bar
			b = market.Bar{Open: 100, High: 103.5, Low: 99.5, Close: 103}
		case i == 11: // holds near the entry, touches neither level
			b = market.Bar{Open: 103, High: 103.5, Low: 102.5, Close: 103}
		case i == 12: // gaps through stop and target alike
			b = market.Bar{Open: 103, High: 120, Low: 80, Close: 100}
		default:
			b = market.Bar{Open: 100, High: 100.5, Low: 99.5, Close: 100}
		}
		b.Time = runBase.Add(time.Duration(i) * time.Minute)
		b.Volume = 100
		bars[i] = b
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.StopATR = 1.5
	eng.Exec.RewardRisk = 1.5
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	tr := res.Trades[0]
	assert.Equal(t, ExitStopLoss, tr.Reason)
	assert.Less(t, tr.Exit, tr.Entry)
	// Worst-case fill at the stop level, not at the bar extreme.
	assert.Greater(t, tr.Exit, 80.0)
}

func TestTrailingStopTightensOnly(t *testing.T) {
	// Strong rally after entry, then a sharp drop. The trailed stop must
	// have moved above the initial stop and filled there.
	bars := make([]market.Bar, 40)
	for i := range bars {
		var c float64
		switch {
		case i < 10:
			c = 100
		case i == 10:
			c = 103
		case i <= 25:
			c = 103 + 1.5*float64(i-10) // rally
		default:
			c = 60 // collapse
		}
		bars[i] = market.Bar{
			Time: runBase.Add(time.Duration(i) * time.Minute),
			Open: c, High: c + 0.6, Low: c - 0.6, Close: c, Volume: 100,
		}
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.MaxHoldBars = 0
	eng.Exec.StopATR = 2.0
	eng.Exec.RewardRisk = 100 // unreachable target
	eng.Exec.TrailATR = 1.0
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	tr := res.Trades[0]
	require.Equal(t, ExitStopLoss, tr.Reason)

	initialStop := tr.Entry - 2.0*f.ATR[10]
	assert.Greater(t, tr.Exit, initialStop, "trailed stop should sit above the initial stop")
	assert.Greater(t, tr.Exit, tr.Entry, "after a 20+ point rally the trailed stop locks in profit")
}

func TestZeroStopDistanceMeansNoTrade(t *testing.T) {
	// Risk sizing with stops disabled: stop distance is 0, the sizer
	// fails closed, and the run records no entry at all.
	s := flatSeries(t, 40, 100, map[int]float64{10: 103})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.FixedContracts = 0 // force risk sizing
	eng.Exec.StopATR = 0        // degenerate stop distance
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	// The run is still representable: full flat equity curve.
	assert.Len(t, res.Equity, 40)
	for _, ep := range res.Equity {
		assert.Zero(t, ep.CumPoints)
		assert.Zero(t, ep.CumDollars)
		assert.Equal(t, 50000.0, ep.Capital)
	}
	assert.Zero(t, res.Summary.Trades)
	assert.Zero(t, res.Summary.WinRate)
}

func TestDailyLossHaltStopsRun(t *testing.T) {
	// Two forced losing trades (flat exits, 10 fee points each) close at
	// bars 20 and 40; cumulative points cross -20 at bar 40. The run
	// must halt at bar 40: no trade or equity point for bar 41 onward.
	s := flatSeries(t, 60, 100, map[int]float64{10: 103, 30: 103})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.FeePoints = 10
	eng.Limits = risk.Limits{MaxDailyLossPoints: 20}
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.True(t, res.Trades[1].ExitTime.Equal(s[40].Time))

	assert.Equal(t, risk.HaltDailyLoss, res.Halt)
	assert.Len(t, res.Equity, 41) // bars 0..40 inclusive
	assert.True(t, res.Equity[len(res.Equity)-1].Time.Equal(s[40].Time))
	assert.LessOrEqual(t, res.Equity[len(res.Equity)-1].CumPoints, -20.0)
}

func TestConsecutiveLossHalt(t *testing.T) {
	s := flatSeries(t, 120, 100, map[int]float64{10: 103, 30: 103, 50: 103, 70: 103, 90: 103})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Exec.FeePoints = 1 // every flat round trip loses a point
	eng.Limits = risk.Limits{MaxConsecutiveLosses: 3}
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)

	assert.Equal(t, risk.HaltLossStreak, res.Halt)
	assert.Len(t, res.Trades, 3)
}

func TestATRBandBlocksEntries(t *testing.T) {
	s := flatSeries(t, 40, 100, map[int]float64{10: 103})
	f := indicators.NewFrame(s, testPeriods)

	eng := breakoutEngine()
	eng.Limits = risk.Limits{ATRMin: 50} // nothing this quiet qualifies
	res, err := eng.Run(s, f, signal.Chain{signal.Breakout{}})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
}

func TestRunValidation(t *testing.T) {
	s := flatSeries(t, 10, 100, nil)
	f := indicators.NewFrame(s, testPeriods)
	eng := breakoutEngine()

	_, err := eng.Run(nil, f, signal.Chain{signal.Breakout{}})
	assert.ErrorContains(t, err, "empty series")

	_, err = eng.Run(s, nil, signal.Chain{signal.Breakout{}})
	assert.ErrorContains(t, err, "frame not aligned")

	_, err = eng.Run(s, f, nil)
	assert.ErrorContains(t, err, "no signal generators")

	bad := breakoutEngine()
	bad.Sizer.PointValue = 0
	_, err = bad.Run(s, f, signal.Chain{signal.Breakout{}})
	assert.ErrorContains(t, err, "point value")
}
