package client

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// StallClient queries the stall service over HTTP.
type StallClient struct {
	http    HTTPDoer
	baseURL string
}

// NewStallClient creates a client for the stall service.
func NewStallClient(httpClient HTTPDoer, baseURL string) *StallClient {
	return &StallClient{
		http:    httpClient,
		baseURL: baseURL,
	}
}

// Exists reports whether the stall exists in the directory. A definitive 404
// comes back as (false, nil); transport failures, 5xx responses, and an open
// circuit breaker come back as errors so the caller can choose how to
// degrade.
func (c *StallClient) Exists(ctx context.Context, stallID string) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/stalls/%s", c.baseURL, stallID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build stall request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return false, fmt.Errorf("query stall service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("stall service returned status %d", resp.StatusCode)
	}
}
