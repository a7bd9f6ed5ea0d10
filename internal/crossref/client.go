package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/citegraph/internal/citation"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default request rate for the polite pool.
	RateLimit = 10.0

	// DefaultClientID names this tool in the User-Agent header.
	DefaultClientID = "citegraph/dev (https://github.com/matsen/citegraph)"

	// maxBodyBytes bounds a single work response.
	maxBodyBytes = 32 << 20
)

// Client is a rate-limited HTTP client for the Crossref REST API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	clientID   string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithClientID sets the client identifier sent in the User-Agent header.
func WithClientID(id string) ClientOption {
	return func(c *Client) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithMailto sets the contact address Crossref uses to route requests to
// its polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithRateLimit sets the maximum requests per second. Zero or negative
// disables pacing.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new Crossref API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		clientID:   DefaultClientID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the courtesy User-Agent sent with every request.
func (c *Client) UserAgent() string {
	if c.mailto == "" {
		return c.clientID
	}
	return c.clientID + " mailto:" + c.mailto
}

// Work fetches the Crossref record for a DOI. The DOI is expected to be
// clean already (see package doi).
func (c *Client) Work(ctx context.Context, doi string) (*Work, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(doi, fmt.Errorf("rate limiter: %w", err))
	}

	reqURL := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(doi, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(doi, fmt.Errorf("%w: %v", ErrNetworkError, err))
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, doi); err != nil {
		return nil, unavailable(doi, err)
	}

	var envelope WorkResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(&envelope); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, unavailable(doi, fmt.Errorf("%w: %v", ErrNetworkError, err))
		}
		return nil, unavailable(doi, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	if envelope.Message == nil {
		return nil, unavailable(doi, fmt.Errorf("%w: no message in response", ErrInvalidResponse))
	}

	return envelope.Message, nil
}

// References returns the raw reference list Crossref holds for a DOI.
// A work that exists but deposits no references yields nil, nil.
func (c *Client) References(ctx context.Context, doi string) ([]citation.RawReference, error) {
	work, err := c.Work(ctx, doi)
	if err != nil {
		return nil, err
	}
	if len(work.Reference) == 0 {
		return nil, nil
	}
	return work.Reference, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, doi string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, doi)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			DOI:        doi,
		}
	}
	return nil
}
