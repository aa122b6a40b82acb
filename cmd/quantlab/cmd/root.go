package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantlab",
	Short: "A trading-signal experimentation toolkit for bar data",
	Long: `Quantlab is a research toolkit for rule-based trading signals on
OHLCV bar data.

It provides tools for:
  - Backtesting signal chains with risk-based sizing and circuit breakers
  - Sweeping strategy parameters over a grid
  - Serving live decisions over HTTP from market snapshots
  - Replaying historical bars against the decision service
  - Fetching historical klines and generating synthetic data

Complete documentation is available at https://github.com/rustyeddy/quantlab`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
