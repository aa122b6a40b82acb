package backtest

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/risk"
)

func TestGridCellsDeterministicOrder(t *testing.T) {
	spec := DefaultGridSpec()
	a, b := spec.Cells(), spec.Cells()

	assert.Len(t, a, 2*2*2*3*3*2)
	assert.Equal(t, a, b)
	// First cell is the first value of every axis.
	assert.Equal(t, GridParams{FastEMA: 8, SlowEMA: 21, Lookback: 10,
		StopATR: 1.2, RewardRisk: 1.2, TrailATR: 0.5}, a[0])
}

func TestGridCellBetter(t *testing.T) {
	mk := func(dollars, winRate float64, trades int) GridCell {
		return GridCell{Result: Result{Summary: Summary{
			Dollars: dollars, WinRate: winRate, Trades: trades,
		}}}
	}
	assert.True(t, mk(100, 10, 1).Better(mk(50, 90, 9)))
	assert.True(t, mk(100, 60, 1).Better(mk(100, 40, 9)))
	assert.True(t, mk(100, 50, 9).Better(mk(100, 50, 1)))
	assert.False(t, mk(100, 50, 5).Better(mk(100, 50, 5)))
}

func TestRankCells(t *testing.T) {
	mk := func(lookback int, dollars float64) GridCell {
		return GridCell{
			Params: GridParams{Lookback: lookback},
			Result: Result{Summary: Summary{Dollars: dollars}},
		}
	}
	all := []GridCell{mk(1, 50), mk(2, 200), mk(3, 50), mk(4, 100)}

	ranked := RankCells(all)
	require.Len(t, ranked, 4)
	assert.Equal(t, 200.0, ranked[0].Result.Summary.Dollars)
	assert.Equal(t, 100.0, ranked[1].Result.Summary.Dollars)
	// Ties keep input order.
	assert.Equal(t, 1, ranked[2].Params.Lookback)
	assert.Equal(t, 3, ranked[3].Params.Lookback)
	// Input untouched.
	assert.Equal(t, 1, all[0].Params.Lookback)
	assert.Equal(t, 50.0, all[0].Result.Summary.Dollars)
}

// walkSeries builds a deterministic pseudo-random intraday walk with
// enough movement to produce trades across most grid cells.
func walkSeries(t *testing.T, n int) market.Series {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)

	bars := make([]market.Bar, n)
	price := 5000.0
	for i := range bars {
		open := price
		price += (rng.Float64() - 0.47) * 6
		high := open
		if price > high {
			high = price
		}
		low := open
		if price < low {
			low = price
		}
		bars[i] = market.Bar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   high + rng.Float64()*2,
			Low:    low - rng.Float64()*2,
			Close:  price,
			Volume: 100 + rng.Float64()*50,
		}
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)
	return s
}

func testGrid(spec GridSpec) *Grid {
	return &Grid{
		Template: Engine{
			Sizer:   risk.Sizer{Fraction: 0.005, PointValue: 5, MinContracts: 1, MaxContracts: 3},
			Capital: 50000,
			Exec:    Exec{MaxHoldBars: 30, FeePoints: 0.5},
		},
		Periods: indicators.DefaultPeriods(),
		Spec:    spec,
	}
}

func TestGridRunIndependentOfWorkerCount(t *testing.T) {
	s := walkSeries(t, 400)
	spec := GridSpec{
		FastEMA:    []int{8, 12},
		SlowEMA:    []int{21},
		Lookback:   []int{10, 20},
		StopATR:    []float64{1.5, 2.0},
		RewardRisk: []float64{1.5},
		TrailATR:   []float64{0, 1.0},
	}

	var firstBest GridCell
	var firstAll []GridCell
	for i, workers := range []int{1, 4, 16} {
		spec.Workers = workers
		g := testGrid(spec)
		best, all, err := g.Run(context.Background(), s)
		require.NoError(t, err)
		require.Len(t, all, 16)

		if i == 0 {
			firstBest, firstAll = best, all
			continue
		}
		assert.Equal(t, firstBest.Params, best.Params, "workers=%d", workers)
		assert.Equal(t, firstBest.Result.Summary, best.Result.Summary, "workers=%d", workers)
		for j := range all {
			assert.Equal(t, firstAll[j].Params, all[j].Params)
			assert.Equal(t, firstAll[j].Result.Summary, all[j].Result.Summary)
		}
	}
}

func TestGridRunBestIsMaximal(t *testing.T) {
	s := walkSeries(t, 300)
	spec := GridSpec{
		FastEMA:    []int{8},
		SlowEMA:    []int{21},
		Lookback:   []int{10, 20},
		StopATR:    []float64{1.2, 2.0},
		RewardRisk: []float64{1.5},
		TrailATR:   []float64{0.5},
	}
	g := testGrid(spec)

	best, all, err := g.Run(context.Background(), s)
	require.NoError(t, err)
	for _, c := range all {
		assert.False(t, c.Better(best), "cell %s outranks the reported best", c.Params)
	}
}

func TestGridRunEmptySpec(t *testing.T) {
	g := testGrid(GridSpec{})
	_, _, err := g.Run(context.Background(), walkSeries(t, 50))
	assert.ErrorContains(t, err, "empty parameter grid")
}
