package feed

import (
	"context"
	"log"
	"time"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/signal"
)

// Options controls replay pacing and windowing.
type Options struct {
	// Interval is the wall-clock delay between bars; <= 0 replays with
	// no delay.
	Interval time.Duration

	// Speed divides the interval: 2.0 replays twice as fast. <= 0 means 1.
	Speed float64

	// Start/End bound the replay by bar timestamp; zero values are open.
	Start time.Time
	End   time.Time

	// SessionFrom/SessionTo restrict bars to a wall-clock window, both
	// "HH:MM". Empty disables the restriction.
	SessionFrom string
	SessionTo   string
}

// Feeder streams a bar series to the decision service one snapshot at a
// time. Warm-up bars update the indicators but are never sent.
type Feeder struct {
	client  *Client
	periods indicators.Periods
	opts    Options
	logger  *log.Logger
}

func New(client *Client, periods indicators.Periods, opts Options, logger *log.Logger) *Feeder {
	if logger == nil {
		logger = log.Default()
	}
	return &Feeder{client: client, periods: periods, opts: opts, logger: logger}
}

// Run replays the series until it is exhausted or ctx is cancelled.
// It returns how many snapshots were sent.
func (f *Feeder) Run(ctx context.Context, s market.Series) (int, error) {
	s = s.Window(f.opts.Start, f.opts.End)
	if f.opts.SessionFrom != "" || f.opts.SessionTo != "" {
		var err error
		if s, err = s.SessionWindow(f.opts.SessionFrom, f.opts.SessionTo); err != nil {
			return 0, err
		}
	}

	shortMA := indicators.NewStreamingSMA(f.periods.ShortMA)
	longMA := indicators.NewStreamingSMA(f.periods.LongMA)
	rsi := indicators.NewStreamingRSI(f.periods.RSI)
	level := indicators.NewStreamingLevel(f.periods.Level)

	delay := f.opts.Interval
	if delay > 0 && f.opts.Speed > 0 {
		delay = time.Duration(float64(delay) / f.opts.Speed)
	}

	sent := 0
	for i, bar := range s {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		shortMA.Update(bar)
		longMA.Update(bar)
		rsi.Update(bar)
		level.Update(bar)

		if shortMA.Ready() && longMA.Ready() && rsi.Ready() && level.Ready() {
			snap := signal.Snapshot{
				Price:      bar.Close,
				Resistance: level.Resistance(),
				Support:    level.Support(),
				ShortMA:    shortMA.Value(),
				LongMA:     longMA.Value(),
				RSI:        rsi.Value(),
			}
			res, err := f.client.Decide(ctx, snap)
			if err != nil {
				return sent, err
			}
			sent++
			f.logger.Printf("%s close=%.2f -> %s (%s)",
				bar.Time.Format("15:04:05"), bar.Close, res.Decision, res.Reason)
		}

		if delay > 0 && i < len(s)-1 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return sent, nil
}
