package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/quantlab/backtest"
)

const tradeColumns = `trade_id, side, entry_time, exit_time, entry_price, exit_price,
	contracts, pnl_points, pnl_dollars, fees, exit_reason, bars_held`

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (backtest.Trade, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return backtest.Trade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return backtest.Trade{}, err
	}
	return t, nil
}

// ListTradesClosedBetween returns trades whose exit_time is within
// [start, end), ordered by exit time.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]backtest.Trade, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backtest.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity points with start <= time < end.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]backtest.EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, cum_pnl_points, cum_pnl_dollars, capital
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backtest.EquityPoint
	for rows.Next() {
		var e backtest.EquityPoint
		if err := rows.Scan(&e.Time, &e.CumPoints, &e.CumDollars, &e.Capital); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SummarizeClosedBetween aggregates the stored trades of a window with
// the same arithmetic used for in-memory runs.
func (j *SQLite) SummarizeClosedBetween(start, end time.Time) (backtest.Summary, error) {
	trades, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return backtest.Summary{}, err
	}
	return backtest.Summarize(trades), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(r rowScanner) (backtest.Trade, error) {
	var t backtest.Trade
	var side, reason string
	err := r.Scan(
		&t.ID, &side, &t.EntryTime, &t.ExitTime, &t.Entry, &t.Exit,
		&t.Contracts, &t.Points, &t.Dollars, &t.Fees, &reason, &t.BarsHeld,
	)
	if err != nil {
		return backtest.Trade{}, err
	}
	t.Side = backtest.ParseSide(side)
	t.Reason = backtest.ExitReason(reason)
	return t, nil
}
