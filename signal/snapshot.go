package signal

// Snapshot is one bar's worth of market state as seen by the live
// decision endpoint. It carries no history: evaluating it is a pure
// function, categorically different from the stateful backtest engine.
type Snapshot struct {
	Price      float64 `json:"price"`
	Resistance float64 `json:"resistance"`
	Support    float64 `json:"support"`
	ShortMA    float64 `json:"short_ma"`
	LongMA     float64 `json:"long_ma"`
	RSI        float64 `json:"rsi"`
}

// Evaluate applies the fixed priority chain to a single snapshot:
// breakout first, then the MA trend, then RSI bounds. First strong
// signal wins.
func Evaluate(m Snapshot) Result {
	if m.Price > m.Resistance {
		return Result{Buy, "breakout_up"}
	}
	if m.Price < m.Support {
		return Result{Sell, "breakout_down"}
	}

	if m.ShortMA > m.LongMA {
		return Result{Buy, "ma_trend_up"}
	}
	if m.ShortMA < m.LongMA {
		return Result{Sell, "ma_trend_down"}
	}

	if m.RSI < 30 {
		return Result{Buy, "rsi_oversold"}
	}
	if m.RSI > 70 {
		return Result{Sell, "rsi_overbought"}
	}

	return hold
}
