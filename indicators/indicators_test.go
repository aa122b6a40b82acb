package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantlab/market"
)

func series(t *testing.T, closes ...float64) market.Series {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time: base.Add(time.Duration(i) * time.Minute),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100,
		}
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)
	return s
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{102, 105, 106, 108, 110}, 3)

	assert.False(t, Defined(got[0]))
	assert.False(t, Defined(got[1]))
	assert.InDelta(t, (102.0+105+106)/3, got[2], 1e-9)
	assert.InDelta(t, (105.0+106+108)/3, got[3], 1e-9)
	assert.InDelta(t, (106.0+108+110)/3, got[4], 1e-9)
}

func TestSMANotEnoughData(t *testing.T) {
	got := SMA([]float64{1, 2}, 5)
	for _, v := range got {
		assert.False(t, Defined(v))
	}
}

func TestEMASeededFromFirstValue(t *testing.T) {
	vals := []float64{100, 110, 120, 130}
	got := EMA(vals, 2)

	// multiplier = 2/3, seeded at 100
	e := 100.0
	mult := 2.0 / 3.0
	assert.False(t, Defined(got[0]))
	for i := 1; i < len(vals); i++ {
		e = (vals[i]-e)*mult + e
		assert.InDelta(t, e, got[i], 1e-9)
	}
}

func TestRSI(t *testing.T) {
	t.Run("all gains means 100", func(t *testing.T) {
		got := RSI([]float64{1, 2, 3, 4, 5, 6, 7}, 3)
		assert.False(t, Defined(got[2]))
		for i := 3; i < len(got); i++ {
			assert.Equal(t, 100.0, got[i])
		}
	})

	t.Run("flat market is neutral 50", func(t *testing.T) {
		got := RSI([]float64{5, 5, 5, 5, 5, 5}, 3)
		for i := 3; i < len(got); i++ {
			assert.Equal(t, 50.0, got[i])
		}
	})

	t.Run("all losses near zero", func(t *testing.T) {
		got := RSI([]float64{7, 6, 5, 4, 3, 2, 1}, 3)
		for i := 3; i < len(got); i++ {
			assert.InDelta(t, 0.0, got[i], 1e-9)
		}
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		vals := []float64{100, 101, 100.5, 102, 101, 103}
		got := RSI(vals, 2)

		alpha := 0.5
		avgGain, avgLoss := 1.0, 0.0 // first delta +1
		deltas := []float64{-0.5, 1.5, -1, 2}
		for i, d := range deltas {
			g, l := 0.0, 0.0
			if d > 0 {
				g = d
			} else {
				l = -d
			}
			avgGain += alpha * (g - avgGain)
			avgLoss += alpha * (l - avgLoss)
			want := 100 - 100/(1+avgGain/avgLoss)
			assert.InDelta(t, want, got[i+2], 1e-9, "index %d", i+2)
		}
	})
}

func TestTrueRangeAndATR(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []market.Bar{
		{Time: base, Open: 9, High: 10, Low: 8, Close: 9, Volume: 1},
		{Time: base.Add(time.Minute), Open: 9, High: 12, Low: 10, Close: 11, Volume: 1}, // gap up
		{Time: base.Add(2 * time.Minute), Open: 11, High: 11.5, Low: 10.5, Close: 11, Volume: 1},
	}
	s, err := market.NewSeries(bars)
	require.NoError(t, err)

	tr := TrueRange(s)
	assert.InDelta(t, 2.0, tr[0], 1e-9)
	assert.InDelta(t, 3.0, tr[1], 1e-9) // |12-9| beats 12-10 and |10-9|
	assert.InDelta(t, 1.0, tr[2], 1e-9)

	atr := ATR(s, 2)
	assert.False(t, Defined(atr[0]))
	// seeded at tr[0]=2, alpha=0.5
	assert.InDelta(t, 2+0.5*(3-2), atr[1], 1e-9)
	assert.InDelta(t, 2.5+0.5*(1-2.5), atr[2], 1e-9)
}

func TestRollingLevelsExcludeCurrentBar(t *testing.T) {
	s := series(t, 100, 101, 102, 103, 110)

	res := RollingHigh(s, 3)
	sup := RollingLow(s, 3)

	assert.False(t, Defined(res[2]))
	// index 3: window bars 0..2, highs are close+1
	assert.InDelta(t, 103.0, res[3], 1e-9)
	assert.InDelta(t, 99.0, sup[3], 1e-9)
	// index 4 excludes its own spike high
	assert.InDelta(t, 104.0, res[4], 1e-9)
	assert.InDelta(t, 100.0, sup[4], 1e-9)
}

func TestFrameWarmupAndReady(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	s := series(t, closes...)

	p := Periods{ShortMA: 5, LongMA: 10, FastEMA: 4, SlowEMA: 8, RSI: 6, ATR: 6, Level: 12}
	f := NewFrame(s, p)

	assert.Equal(t, 12, f.Warmup()) // level window dominates

	for i := 0; i < f.Warmup(); i++ {
		assert.False(t, f.Ready(i), "bar %d should be warm-up", i)
	}
	for i := f.Warmup(); i < len(s); i++ {
		assert.True(t, f.Ready(i), "bar %d should be ready", i)
	}

	assert.False(t, f.Ready(-1))
	assert.False(t, f.Ready(len(s)))
}
