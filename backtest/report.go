package backtest

// Summary aggregates a run's closed trades. Pure: no upstream state is
// touched.
type Summary struct {
	Trades  int
	Wins    int
	WinRate float64 // percent; 0 when there are no trades
	Points  float64 // contract-weighted net points
	Dollars float64
	Fees    float64
}

// Summarize computes the win-rate/P&L summary for a trade list. An empty
// list yields the zero Summary; a run with no eligible entries is a
// valid outcome, not an error.
func Summarize(trades []Trade) Summary {
	var s Summary
	for _, t := range trades {
		s.Trades++
		if t.Dollars > 0 {
			s.Wins++
		}
		s.Points += t.Points * float64(t.Contracts)
		s.Dollars += t.Dollars
		s.Fees += t.Fees
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	return s
}
