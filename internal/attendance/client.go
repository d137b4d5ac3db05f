// Package attendance fetches live headcounts from the external attendance
// feed. The feed is best effort: any transport, status, or decoding problem
// surfaces as a recoverable *FetchError and never more than that.
package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Counts maps session ids to live attendance numbers.
type Counts map[string]int

// FetchError reports a failed attendance poll. It is fully recoverable; the
// tracker logs it and retries on the next tick.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("attendance: fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("attendance: fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client polls the attendance endpoint with a static token parameter.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// NewClient constructs a client for the given endpoint. The token, when not
// empty, is appended as a query parameter on every request.
func NewClient(endpoint, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		token:      token,
	}
}

type feedDocument struct {
	Attendance map[string]int `json:"attendance"`
}

// Fetch performs one poll and returns the decoded counts.
func (c *Client) Fetch(ctx context.Context) (Counts, error) {
	target, err := c.requestURL()
	if err != nil {
		return nil, &FetchError{URL: c.endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: target, Status: resp.StatusCode}
	}

	var doc feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("decode body: %w", err)}
	}

	counts := make(Counts, len(doc.Attendance))
	for id, n := range doc.Attendance {
		counts[id] = n
	}
	return counts, nil
}

func (c *Client) requestURL() (string, error) {
	parsed, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	if c.token != "" {
		query := parsed.Query()
		query.Set("token", c.token)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
