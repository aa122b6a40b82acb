package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/quantlab/backtest"
)

var tradeHeader = []string{
	"entry_time", "exit_time", "side", "entry_price", "exit_price",
	"contracts", "pnl_points", "pnl_dollars", "exit_reason", "bars_held", "trade_id",
}

var equityHeader = []string{"time", "cum_pnl_points", "cum_pnl_dollars", "capital"}

// CSVJournal writes trades and equity to two CSV files. Rows are flushed
// as they are written so a crashed run still leaves a usable journal.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{
		trades: csv.NewWriter(tf),
		equity: csv.NewWriter(ef),
		tf:     tf,
		ef:     ef,
	}

	if err := j.trades.Write(tradeHeader); err != nil {
		return nil, err
	}
	if err := j.equity.Write(equityHeader); err != nil {
		return nil, err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return nil, err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordTrade(t backtest.Trade) error {
	err := j.trades.Write([]string{
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		t.Side.String(),
		f(t.Entry),
		f(t.Exit),
		strconv.Itoa(t.Contracts),
		f(t.Points),
		f(t.Dollars),
		string(t.Reason),
		strconv.Itoa(t.BarsHeld),
		t.ID,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e backtest.EquityPoint) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.CumPoints),
		f(e.CumDollars),
		f(e.Capital),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

// ReadTradesCSV loads a trades journal back into memory. Dollar fees are
// not part of the CSV schema and come back zero.
func ReadTradesCSV(path string) ([]backtest.Trade, error) {
	rows, err := readAll(path, tradeHeader)
	if err != nil {
		return nil, err
	}

	var out []backtest.Trade
	for n, row := range rows {
		var t backtest.Trade
		if t.EntryTime, err = time.Parse(time.RFC3339, row[0]); err != nil {
			return nil, fmt.Errorf("%s row %d: entry_time: %w", path, n+2, err)
		}
		if t.ExitTime, err = time.Parse(time.RFC3339, row[1]); err != nil {
			return nil, fmt.Errorf("%s row %d: exit_time: %w", path, n+2, err)
		}
		t.Side = backtest.ParseSide(row[2])
		if t.Entry, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: entry_price: %w", path, n+2, err)
		}
		if t.Exit, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: exit_price: %w", path, n+2, err)
		}
		if t.Contracts, err = strconv.Atoi(row[5]); err != nil {
			return nil, fmt.Errorf("%s row %d: contracts: %w", path, n+2, err)
		}
		if t.Points, err = strconv.ParseFloat(row[6], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: pnl_points: %w", path, n+2, err)
		}
		if t.Dollars, err = strconv.ParseFloat(row[7], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: pnl_dollars: %w", path, n+2, err)
		}
		t.Reason = backtest.ExitReason(row[8])
		if t.BarsHeld, err = strconv.Atoi(row[9]); err != nil {
			return nil, fmt.Errorf("%s row %d: bars_held: %w", path, n+2, err)
		}
		t.ID = row[10]
		out = append(out, t)
	}
	return out, nil
}

// ReadEquityCSV loads an equity journal back into memory.
func ReadEquityCSV(path string) ([]backtest.EquityPoint, error) {
	rows, err := readAll(path, equityHeader)
	if err != nil {
		return nil, err
	}

	var out []backtest.EquityPoint
	for n, row := range rows {
		var e backtest.EquityPoint
		if e.Time, err = time.Parse(time.RFC3339, row[0]); err != nil {
			return nil, fmt.Errorf("%s row %d: time: %w", path, n+2, err)
		}
		if e.CumPoints, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: cum_pnl_points: %w", path, n+2, err)
		}
		if e.CumDollars, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: cum_pnl_dollars: %w", path, n+2, err)
		}
		if e.Capital, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: capital: %w", path, n+2, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func readAll(path string, header []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty journal", path)
	}
	if len(rows[0]) != len(header) {
		return nil, fmt.Errorf("%s: want %d columns, got %d", path, len(header), len(rows[0]))
	}
	for i, col := range header {
		if rows[0][i] != col {
			return nil, fmt.Errorf("%s: column %d is %q, want %q", path, i, rows[0][i], col)
		}
	}
	return rows[1:], nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
