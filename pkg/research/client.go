// Package research provides the client for the internal research engine that
// performs the actual lead lookups behind the discovery scheduler.
package research

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

// Client defines the research engine operations used by the scheduler.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]RawCandidate, error)
}

// SearchRequest is the body for a research engine search call.
type SearchRequest struct {
	Intent       string         `json:"intent"`
	Query        string         `json:"query"`
	Location     string         `json:"location"`
	MaxResults   int            `json:"max_results"`
	PortalConfig map[string]any `json:"portal_config,omitempty"`
}

// RawCandidate is one scraped lead as returned by the research engine. It is
// ephemeral: it exists only within one batch's processing scope. Provider
// payload differences are absorbed here, at the boundary; nothing untyped
// travels further.
type RawCandidate struct {
	Name              string   `json:"name"`
	ContactPersonName string   `json:"contact_person_name"`
	Salutation        string   `json:"salutation"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	Website           string   `json:"website"`
	Address           string   `json:"address"`
	Sources           []string `json:"sources"`
}

// envelope tolerates both response shapes the engine produces: results at the
// top level or nested under data.
type envelope struct {
	Results []RawCandidate `json:"results"`
	Data    struct {
		Results []RawCandidate `json:"results"`
	} `json:"data"`
}

// APIError is returned when the research engine responds with a non-2xx
// status. It aborts only the batch that made the call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("research: HTTP %d: %s", e.StatusCode, e.Body)
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

// NewClient creates a research engine client for the given endpoint.
func NewClient(endpoint, token string, opts ...Option) Client {
	c := &httpClient{
		endpoint: endpoint,
		token:    token,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one lead lookup and returns the raw candidates.
func (c *httpClient) Search(ctx context.Context, req SearchRequest) ([]RawCandidate, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "research: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "research: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "research: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "research: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, eris.Wrap(err, "research: decode response")
	}

	if env.Results != nil {
		return env.Results, nil
	}
	return env.Data.Results, nil
}
