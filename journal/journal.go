// Package journal persists backtest output: closed trades and the
// equity curve, to CSV files or a SQLite database.
package journal

import (
	"fmt"

	"github.com/rustyeddy/quantlab/backtest"
)

type Journal interface {
	RecordTrade(backtest.Trade) error
	RecordEquity(backtest.EquityPoint) error
	Close() error
}

// RecordRun writes every trade and equity point of a finished run.
func RecordRun(j Journal, res backtest.Result) error {
	for _, tr := range res.Trades {
		if err := j.RecordTrade(tr); err != nil {
			return fmt.Errorf("record trade %s: %w", tr.ID, err)
		}
	}
	for _, ep := range res.Equity {
		if err := j.RecordEquity(ep); err != nil {
			return fmt.Errorf("record equity point %s: %w", ep.Time.Format("2006-01-02T15:04:05"), err)
		}
	}
	return nil
}
