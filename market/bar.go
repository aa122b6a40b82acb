// Package market holds OHLCV bars and time-ordered bar series.
package market

import (
	"fmt"
	"sort"
	"time"
)

// Bar is one OHLCV sample for a fixed interval. Bars are immutable once
// ingested.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a strictly time-ordered sequence of bars with no duplicate
// timestamps.
type Series []Bar

// NewSeries sorts bars by time and validates the result. It returns an
// error on duplicate timestamps or non-positive prices so that bad input
// fails before any simulation state exists.
func NewSeries(bars []Bar) (Series, error) {
	s := make(Series, len(bars))
	copy(s, bars)
	sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })

	for i, b := range s {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return nil, fmt.Errorf("bar %d (%s): non-positive price", i, b.Time.Format(time.RFC3339))
		}
		if b.Volume < 0 {
			return nil, fmt.Errorf("bar %d (%s): negative volume", i, b.Time.Format(time.RFC3339))
		}
		if i > 0 && !s[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("duplicate timestamp %s", b.Time.Format(time.RFC3339))
		}
	}
	return s, nil
}

// Window returns the bars with start <= t <= end. Zero bounds are open.
func (s Series) Window(start, end time.Time) Series {
	var out Series
	for _, b := range s {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SessionWindow keeps only bars whose wall-clock time of day falls within
// [from, to], both "HH:MM". The original research restricted runs to a
// 16:00-17:30 session.
func (s Series) SessionWindow(from, to string) (Series, error) {
	fh, fm, err := parseClock(from)
	if err != nil {
		return nil, fmt.Errorf("session start: %w", err)
	}
	th, tm, err := parseClock(to)
	if err != nil {
		return nil, fmt.Errorf("session end: %w", err)
	}
	lo := fh*60 + fm
	hi := th*60 + tm
	if hi < lo {
		return nil, fmt.Errorf("session window %s-%s ends before it starts", from, to)
	}

	var out Series
	for _, b := range s {
		mins := b.Time.Hour()*60 + b.Time.Minute()
		if mins >= lo && mins <= hi {
			out = append(out, b)
		}
	}
	return out, nil
}

func parseClock(v string) (h, m int, err error) {
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("bad clock %q (want HH:MM)", v)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("bad clock %q", v)
	}
	return h, m, nil
}

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}
