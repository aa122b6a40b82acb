package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/signal"
)

// GridParams is one cell of a parameter sweep.
type GridParams struct {
	FastEMA    int
	SlowEMA    int
	Lookback   int // breakout level window
	StopATR    float64
	RewardRisk float64
	TrailATR   float64
}

func (p GridParams) String() string {
	return fmt.Sprintf("EMA(%d/%d) LB=%d ATRxSL=%.2f RR=%.2f Trail=%.2f",
		p.FastEMA, p.SlowEMA, p.Lookback, p.StopATR, p.RewardRisk, p.TrailATR)
}

// GridSpec enumerates the sweep axes. Every axis must be non-empty;
// DefaultGridSpec supplies the light grid used in the research runs.
type GridSpec struct {
	FastEMA    []int
	SlowEMA    []int
	Lookback   []int
	StopATR    []float64
	RewardRisk []float64
	TrailATR   []float64

	// Workers bounds the worker pool; 0 means GOMAXPROCS. Results do not
	// depend on the worker count.
	Workers int
}

// DefaultGridSpec is the light grid from the aggressive variant.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		FastEMA:    []int{8, 12},
		SlowEMA:    []int{21, 26},
		Lookback:   []int{10, 20},
		StopATR:    []float64{1.2, 1.5, 2.0},
		RewardRisk: []float64{1.2, 1.5, 2.0},
		TrailATR:   []float64{0.5, 1.0},
	}
}

// Cells expands the spec into the full parameter cross-product, in a
// fixed deterministic order.
func (g GridSpec) Cells() []GridParams {
	var out []GridParams
	for _, f := range g.FastEMA {
		for _, s := range g.SlowEMA {
			for _, lb := range g.Lookback {
				for _, sm := range g.StopATR {
					for _, rr := range g.RewardRisk {
						for _, tr := range g.TrailATR {
							out = append(out, GridParams{
								FastEMA: f, SlowEMA: s, Lookback: lb,
								StopATR: sm, RewardRisk: rr, TrailATR: tr,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// GridCell pairs a parameter cell with its run result.
type GridCell struct {
	Params GridParams
	Result Result
}

// Better ranks cells by dollar P&L, then win rate, then trade count.
func (c GridCell) Better(o GridCell) bool {
	a, b := c.Result.Summary, o.Result.Summary
	if a.Dollars != b.Dollars {
		return a.Dollars > b.Dollars
	}
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	return a.Trades > b.Trades
}

// RankCells returns the cells ordered best-first by Better, with ties
// kept in input order. The input is not modified.
func RankCells(all []GridCell) []GridCell {
	ranked := make([]GridCell, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Better(ranked[j])
	})
	return ranked
}

// Grid sweeps engine parameters over independent backtest runs. Each
// cell gets a fresh engine and frame; no state is shared between cells,
// so runs are parallelized across a bounded worker pool. Correctness
// never depends on parallel execution: the best cell is chosen by score
// with ties broken by cell order.
type Grid struct {
	Template Engine // Exec/Sizer/Limits template; per-cell fields overwritten
	Periods  indicators.Periods
	Spec     GridSpec
}

// Run evaluates every cell and returns the best one plus all cells in
// spec order. Cancelling ctx stops issuing new runs; in-flight runs
// finish their pass.
func (g *Grid) Run(ctx context.Context, s market.Series) (best GridCell, all []GridCell, err error) {
	cells := g.Spec.Cells()
	if len(cells) == 0 {
		return GridCell{}, nil, fmt.Errorf("grid: empty parameter grid")
	}

	workers := g.Spec.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cells) {
		workers = len(cells)
	}

	all = make([]GridCell, len(cells))
	errs := make([]error, len(cells))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				all[idx] = GridCell{Params: cells[idx]}
				all[idx].Result, errs[idx] = g.runCell(s, cells[idx])
			}
		}()
	}

	issued := 0
feed:
	for idx := range cells {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
			issued++
		}
	}
	close(jobs)
	wg.Wait()

	if issued == 0 {
		return GridCell{}, nil, ctx.Err()
	}
	all = all[:issued]

	for idx, cellErr := range errs[:issued] {
		if cellErr != nil {
			return GridCell{}, nil, fmt.Errorf("grid cell %s: %w", cells[idx], cellErr)
		}
	}

	best = all[0]
	for _, c := range all[1:] {
		if c.Better(best) {
			best = c
		}
	}
	return best, all, nil
}

func (g *Grid) runCell(s market.Series, p GridParams) (Result, error) {
	periods := g.Periods
	periods.FastEMA = p.FastEMA
	periods.SlowEMA = p.SlowEMA
	periods.Level = p.Lookback

	f := indicators.NewFrame(s, periods)

	eng := g.Template
	eng.Exec.StopATR = p.StopATR
	eng.Exec.RewardRisk = p.RewardRisk
	eng.Exec.TrailATR = p.TrailATR

	chain := signal.Chain{signal.EMACross{}, signal.Breakout{}, signal.NewPullback()}
	return eng.Run(s, f, chain)
}
