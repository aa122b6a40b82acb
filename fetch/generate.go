package fetch

import (
	"math/rand"
	"time"

	"github.com/rustyeddy/quantlab/market"
)

// GenOptions shapes a synthetic series. Zero values pick the defaults
// noted per field.
type GenOptions struct {
	Bars       int           // default 390 (one US session of minutes)
	Start      time.Time     // default 2024-01-02 16:00 UTC
	Interval   time.Duration // default one minute
	StartPrice float64       // default 5000
	Drift      float64       // per-bar drift in points, default 0
	Volatility float64       // per-bar move scale in points, default 2
	Seed       int64         // rand seed, default 1
}

// Synthetic builds a seeded random-walk bar series. Same options, same
// series: the generator is deterministic for reproducible demos.
func Synthetic(opts GenOptions) market.Series {
	if opts.Bars <= 0 {
		opts.Bars = 390
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.StartPrice <= 0 {
		opts.StartPrice = 5000
	}
	if opts.Volatility <= 0 {
		opts.Volatility = 2
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}

	rng := rand.New(rand.NewSource(seed))
	bars := make([]market.Bar, opts.Bars)
	price := opts.StartPrice

	for i := range bars {
		open := price
		price += opts.Drift + (rng.Float64()-0.5)*2*opts.Volatility
		// A random walk can go anywhere; keep prices sane.
		if price < opts.StartPrice*0.1 {
			price = opts.StartPrice * 0.1
		}

		high, low := open, open
		if price > high {
			high = price
		}
		if price < low {
			low = price
		}
		bars[i] = market.Bar{
			Time:   opts.Start.Add(time.Duration(i) * opts.Interval),
			Open:   open,
			High:   high + rng.Float64()*opts.Volatility/2,
			Low:    low - rng.Float64()*opts.Volatility/2,
			Close:  price,
			Volume: 100 + rng.Float64()*400,
		}
		if bars[i].Low <= 0 {
			bars[i].Low = open * 0.01
		}
	}

	s, err := market.NewSeries(bars)
	if err != nil {
		// Timestamps are ordered and unique and prices clamped positive,
		// so validation cannot fail.
		panic(err)
	}
	return s
}
