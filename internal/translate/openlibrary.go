package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// OpenLibraryURL is the Open Library base URL.
	OpenLibraryURL = "https://openlibrary.org"

	// OpenLibraryRateLimit is the default request rate for Open Library.
	OpenLibraryRateLimit = 1.0

	// maxBookBytes bounds a single books API response.
	maxBookBytes = 4 << 20
)

// Book is the subset of an Open Library jscmd=data record used here.
type Book struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	Authors     []struct {
		Name string `json:"name"`
	} `json:"authors,omitempty"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers,omitempty"`
}

// OpenLibrary is a rate-limited client for the Open Library books API.
type OpenLibrary struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxBody    int64
}

// OpenLibraryOption configures an OpenLibrary client.
type OpenLibraryOption func(*OpenLibrary)

// WithOpenLibraryURL sets a custom base URL (for testing).
func WithOpenLibraryURL(u string) OpenLibraryOption {
	return func(c *OpenLibrary) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithOpenLibraryHTTPClient sets a custom HTTP client.
func WithOpenLibraryHTTPClient(hc *http.Client) OpenLibraryOption {
	return func(c *OpenLibrary) {
		c.httpClient = hc
	}
}

// WithOpenLibraryRateLimit sets the maximum requests per second. Zero or
// negative disables pacing.
func WithOpenLibraryRateLimit(perSecond float64) OpenLibraryOption {
	return func(c *OpenLibrary) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) OpenLibraryOption {
	return func(c *OpenLibrary) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewOpenLibrary creates an Open Library client.
func NewOpenLibrary(opts ...OpenLibraryOption) *OpenLibrary {
	c := &OpenLibrary{
		httpClient: &http.Client{Timeout: 12 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(OpenLibraryRateLimit), 1),
		baseURL:    OpenLibraryURL,
		userAgent:  "citegraph/dev",
		maxBody:    maxBookBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Book fetches the edition record for an ISBN. An ISBN Open Library does
// not know returns ErrBookNotFound.
func (c *OpenLibrary) Book(ctx context.Context, isbn string) (*Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	key := "ISBN:" + isbn
	v := url.Values{}
	v.Set("bibkeys", key)
	v.Set("format", "json")
	v.Set("jscmd", "data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/books?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openlibrary: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var books map[string]Book
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&books); err != nil {
		return nil, fmt.Errorf("openlibrary: decoding response: %w", err)
	}
	book, ok := books[key]
	if !ok || book.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	return &book, nil
}
