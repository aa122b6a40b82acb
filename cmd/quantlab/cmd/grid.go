package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/market"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Sweep strategy parameters over a grid of backtest runs",
	Long: `Grid runs the aggressive EMA-cross/breakout/pullback chain over every
cell of a parameter grid and reports the best cell by dollar P/L.

Example:
  quantlab grid --bars data/es_1m.csv --workers 8`,
	RunE: runGrid,
}

var (
	gridBarsPath   string
	gridConfigPath string
	gridWorkers    int
	gridTop        int
)

func init() {
	rootCmd.AddCommand(gridCmd)

	gridCmd.Flags().StringVarP(&gridBarsPath, "bars", "b", "", "path to bar CSV (required)")
	gridCmd.Flags().StringVarP(&gridConfigPath, "config", "c", "", "path to config file (default: built-in defaults)")
	gridCmd.Flags().IntVarP(&gridWorkers, "workers", "w", 0, "worker pool size (0 = GOMAXPROCS)")
	gridCmd.Flags().IntVar(&gridTop, "top", 5, "how many cells to print")

	gridCmd.MarkFlagRequired("bars")
}

func runGrid(cmd *cobra.Command, args []string) error {
	btConfigPath = gridConfigPath
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := market.ReadCSV(gridBarsPath)
	if err != nil {
		return fmt.Errorf("read bars: %w", err)
	}
	if cfg.Session.From != "" {
		if s, err = s.SessionWindow(cfg.Session.From, cfg.Session.To); err != nil {
			return err
		}
	}

	spec := backtest.DefaultGridSpec()
	spec.Workers = gridWorkers

	eng, err := cfg.Engine()
	if err != nil {
		return err
	}
	g := &backtest.Grid{
		Template: *eng,
		Periods:  cfg.Periods(),
		Spec:     spec,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Sweeping %d cells over %d bars\n\n", len(spec.Cells()), len(s))
	best, all, err := g.Run(ctx, s)
	if err != nil {
		return fmt.Errorf("grid: %w", err)
	}

	// Rank for display; Run already picked the best deterministically.
	ranked := backtest.RankCells(all)

	top := gridTop
	if top > len(ranked) {
		top = len(ranked)
	}
	for i := 0; i < top; i++ {
		c := ranked[i]
		fmt.Printf("%2d. %s  $%.2f  %.1f%% win  %d trades\n",
			i+1, c.Params, c.Result.Summary.Dollars, c.Result.Summary.WinRate, c.Result.Summary.Trades)
	}

	fmt.Printf("\nBest: %s\n", best.Params)
	printSummary(best.Result)
	return nil
}
