package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	side TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	contracts INTEGER NOT NULL,
	pnl_points REAL NOT NULL,
	pnl_dollars REAL NOT NULL,
	fees REAL NOT NULL,
	exit_reason TEXT NOT NULL,
	bars_held INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cum_pnl_points REAL NOT NULL,
	cum_pnl_dollars REAL NOT NULL,
	capital REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
