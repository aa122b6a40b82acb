package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/quantlab/backtest"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t backtest.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, side, entry_time, exit_time, entry_price, exit_price,
		 contracts, pnl_points, pnl_dollars, fees, exit_reason, bars_held)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Side.String(), t.EntryTime, t.ExitTime, t.Entry, t.Exit,
		t.Contracts, t.Points, t.Dollars, t.Fees, string(t.Reason), t.BarsHeld,
	)
	return err
}

func (j *SQLite) RecordEquity(e backtest.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cum_pnl_points, cum_pnl_dollars, capital)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.CumPoints, e.CumDollars, e.Capital,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
