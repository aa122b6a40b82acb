// Package feed replays historical bar series against the live decision
// service, computing indicator snapshots incrementally the way a real
// feed would.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rustyeddy/quantlab/decision"
	"github.com/rustyeddy/quantlab/signal"
)

// Client talks to the decision API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client; timeout <= 0 means 5 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Decide posts one snapshot and returns the service's decision.
func (c *Client) Decide(ctx context.Context, snap signal.Snapshot) (decision.Response, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return decision.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/bot/strategy", bytes.NewReader(body))
	if err != nil {
		return decision.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return decision.Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decision.Response{}, fmt.Errorf("decision service: %s", resp.Status)
	}

	var out decision.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decision.Response{}, fmt.Errorf("decode decision: %w", err)
	}
	return out, nil
}
