// Package fetch acquires historical bar data: paginated downloads from
// the Binance klines API and a synthetic generator for demos and tests.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/quantlab/market"
)

// DefaultBaseURL is the public Binance spot API.
const DefaultBaseURL = "https://api.binance.com"

const maxPageSize = 1000

// Client fetches klines from a Binance-compatible API.
type Client struct {
	BaseURL string        // defaults to DefaultBaseURL
	HTTP    *http.Client  // defaults to a 30s-timeout client
	Pause   time.Duration // politeness delay between pages, default 250ms
}

// KlinesRequest bounds one download.
type KlinesRequest struct {
	Symbol   string    // e.g. "BTCUSDT"
	Interval string    // e.g. "1m"
	Start    time.Time // inclusive
	End      time.Time // exclusive
	Limit    int       // page size, default and max 1000
}

// Klines downloads the requested window page by page and returns the
// assembled series. Cancelling ctx aborts between pages.
func (c *Client) Klines(ctx context.Context, req KlinesRequest) (market.Series, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("fetch: missing symbol")
	}
	if req.Interval == "" {
		return nil, fmt.Errorf("fetch: missing interval")
	}
	if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
		return nil, fmt.Errorf("fetch: bad window [%s, %s)", req.Start, req.End)
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	pause := c.Pause
	if pause <= 0 {
		pause = 250 * time.Millisecond
	}
	limit := req.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	var bars []market.Bar
	start := req.Start.UnixMilli()
	end := req.End.UnixMilli()

	for start < end {
		page, err := c.fetchPage(ctx, httpClient, baseURL, req.Symbol, req.Interval, start, end, limit)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)

		// Next page starts just past the last open time.
		start = page[len(page)-1].Time.UnixMilli() + 1

		if len(page) < limit {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pause):
		}
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch: no klines for %s in [%s, %s)",
			req.Symbol, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
	}
	return market.NewSeries(bars)
}

func (c *Client) fetchPage(ctx context.Context, httpClient *http.Client, baseURL,
	symbol, interval string, start, end int64, limit int) ([]market.Bar, error) {

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/api/v3/klines"
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(start, 10))
	q.Set("endTime", strconv.FormatInt(end, 10))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: klines %s: %s", resp.Status, body)
	}

	// Each kline is a mixed-type array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fetch: decode klines: %w", err)
	}

	bars := make([]market.Bar, 0, len(raw))
	for i, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("fetch: kline %d has %d fields", i, len(row))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("fetch: kline %d open time: %w", i, err)
		}
		b := market.Bar{Time: time.UnixMilli(openMs).UTC()}
		for j, dst := range []*float64{&b.Open, &b.High, &b.Low, &b.Close, &b.Volume} {
			var s string
			if err := json.Unmarshal(row[j+1], &s); err != nil {
				return nil, fmt.Errorf("fetch: kline %d field %d: %w", i, j+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("fetch: kline %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		bars = append(bars, b)
	}
	return bars, nil
}
