// Package credits provides the client for the platform credit service. The
// scheduler uses it for a single best-effort deduction at the end of a run.
package credits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the credit service operations used by the scheduler.
type Client interface {
	Deduct(ctx context.Context, req DeductRequest) error
}

// DeductRequest is the body for a credit deduction call.
type DeductRequest struct {
	Action     string `json:"action"` // always "deduct"
	Credits    int    `json:"credits"`
	ActionCode string `json:"action_code"`
	RefType    string `json:"ref_type"`
	RefID      string `json:"ref_id"`
}

// APIError is returned when the credit service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("credits: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a credit service client for the given endpoint.
func NewClient(endpoint, token string, opts ...Option) Client {
	c := &httpClient{
		endpoint: endpoint,
		token:    token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deduct posts one deduction. The response body is not inspected beyond the
// status code; the ledger is authoritative on the service side.
func (c *httpClient) Deduct(ctx context.Context, req DeductRequest) error {
	if req.Action == "" {
		req.Action = "deduct"
	}

	buf, err := json.Marshal(req)
	if err != nil {
		return eris.Wrap(err, "credits: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "credits: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "credits: execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return nil
}
