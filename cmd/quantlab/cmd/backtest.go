package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/config"
	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/internal/id"
	"github.com/rustyeddy/quantlab/journal"
	"github.com/rustyeddy/quantlab/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a signal-chain backtest over a bar CSV",
	Long: `Backtest runs the configured signal chain over historical OHLCV bars,
with risk-based sizing and run-level circuit breakers, and journals the
trades and equity curve.

Example:
  quantlab backtest --bars data/es_1m.csv --config research.yaml`,
	RunE: runBacktest,
}

var (
	btBarsPath   string
	btConfigPath string
	btReportPath string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (time,open,high,low,close,volume) (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (default: built-in defaults)")
	backtestCmd.Flags().StringVar(&btReportPath, "report", "", "write an org-mode run report to this path")

	backtestCmd.MarkFlagRequired("bars")
}

func loadConfig() (*config.Config, error) {
	if btConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(btConfigPath)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := market.ReadCSV(btBarsPath)
	if err != nil {
		return fmt.Errorf("read bars: %w", err)
	}
	if cfg.Session.From != "" {
		if s, err = s.SessionWindow(cfg.Session.From, cfg.Session.To); err != nil {
			return err
		}
	}

	chain, err := cfg.Chain()
	if err != nil {
		return err
	}
	frame := indicators.NewFrame(s, cfg.Periods())
	eng, err := cfg.Engine()
	if err != nil {
		return err
	}

	fmt.Printf("Running backtest\n")
	fmt.Printf("  Bars: %s (%d bars)\n", btBarsPath, len(s))
	fmt.Printf("  Generators: %v\n\n", cfg.Strategy.Generators)

	res, err := eng.Run(s, frame, chain)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()
	if err := journal.RecordRun(j, res); err != nil {
		return err
	}

	printSummary(res)

	if btReportPath != "" {
		rep := journal.NewRunReport(id.New(), btBarsPath, "chain", res)
		rep.StopATR = cfg.Execution.StopATR
		rep.RewardRisk = cfg.Execution.RewardRisk
		rep.TrailATR = cfg.Execution.TrailATR
		rep.RiskFraction = cfg.Risk.Fraction
		rep.StartCapital = cfg.Account.Capital
		if err := rep.WriteOrg(btReportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("  Report: %s\n", btReportPath)
	}
	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	if cfg.Journal.Type == "sqlite" {
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
}

func printSummary(res backtest.Result) {
	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Trades: %d (%d wins, %.1f%%)\n", res.Summary.Trades, res.Summary.Wins, res.Summary.WinRate)
	fmt.Printf("  Points: %.2f\n", res.Summary.Points)
	fmt.Printf("  P/L: $%.2f (fees $%.2f)\n", res.Summary.Dollars, res.Summary.Fees)
	fmt.Printf("  Final capital: $%.2f\n", res.Capital)
	if res.Halt != "" {
		fmt.Printf("  Halted: %s\n", res.Halt)
	}
}
