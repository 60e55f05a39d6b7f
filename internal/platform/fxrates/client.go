// Package fxrates is the REST client for the external spot-rate service.
package fxrates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Client fetches spot rates over HTTP. The service answers
// GET {base}/currency?from=CNY&to=USD with {"rate": 0.14, ...}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a rate client. timeout bounds each request; a timed-out fetch
// fails only the computation that needed the rate, never the whole batch.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// rateResponse is the upstream JSON shape.
type rateResponse struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// Rate fetches the spot rate for the ordered currency pair.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	reqURL := c.baseURL + "/currency?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("fxrates: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fxrates: get %s->%s: %w", from, to, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, fmt.Errorf("fxrates: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fxrates: get %s->%s: status %d: %s", from, to, resp.StatusCode, body)
	}

	var rr rateResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return 0, fmt.Errorf("fxrates: decode response: %w", err)
	}
	if rr.Rate <= 0 {
		return 0, fmt.Errorf("fxrates: %s->%s: non-positive rate %v: %w", from, to, rr.Rate, domain.ErrBadRecord)
	}
	return rr.Rate, nil
}

// Compile-time interface check.
var _ domain.RateSource = (*Client)(nil)
