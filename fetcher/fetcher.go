package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultDomainDelay = 500 * time.Millisecond
	defaultTimeout     = 15 * time.Second
	defaultMaxBody     = 10 << 20 // 10MB
	retryBaseDelay     = 500 * time.Millisecond
	maxRetries         = 1
)

// userAgents is rotated across calls to reduce blocking by target sites.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Error is a typed fetch failure. HTTP error statuses are reported through
// it rather than panicking or being folded into transport errors, so callers
// can decide what a 404 vs a 503 means for them.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether the failure is worth retrying.
func (e *Error) Temporary() bool {
	return e.Status >= 500 || (e.Status == 0 && e.Err != nil)
}

// Response is a completed fetch.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	DomainDelay time.Duration
	Timeout     time.Duration
	MaxBody     int64
}

// Client performs polite HTTP retrieval: a minimum inter-request delay per
// target domain shared across all concurrent callers, a hard per-call
// timeout, one retry with backoff on transient failures, and a rotating
// User-Agent.
type Client struct {
	http    *http.Client
	logger  *zap.Logger
	delay   time.Duration
	maxBody int64

	mu      sync.Mutex
	lastHit map[string]time.Time
	uaIdx   int
}

// New creates a Client.
func New(logger *zap.Logger, opts Options) *Client {
	if opts.DomainDelay <= 0 {
		opts.DomainDelay = defaultDomainDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = defaultMaxBody
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
		logger:  logger,
		delay:   opts.DomainDelay,
		maxBody: opts.MaxBody,
		lastHit: make(map[string]time.Time),
	}
}

// Fetch retrieves rawURL with a GET request.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	return c.Do(ctx, req)
}

// Do executes an arbitrary request under the same politeness rules as Fetch.
// Engines use it for multipart uploads.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	rawURL := req.URL.String()
	domain := domainOf(req.URL)

	if err := c.acquire(ctx, domain); err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	c.decorate(req)

	var lastErr *Error
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(req.Clone(ctx))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt >= maxRetries || !err.Temporary() {
			return nil, lastErr
		}

		backoff := retryBaseDelay << attempt
		c.logger.Warn("fetch retry",
			zap.String("url", rawURL),
			zap.Int("status", err.Status),
			zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil, &Error{URL: rawURL, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}
}

func (c *Client) attempt(req *http.Request) (*Response, *Error) {
	rawURL := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	return &Response{Status: resp.StatusCode, Body: body, Header: resp.Header}, nil
}

// acquire reserves the next allowed slot for domain and sleeps until it.
// The reservation happens under the lock so concurrent callers targeting the
// same domain queue up instead of bursting.
func (c *Client) acquire(ctx context.Context, domain string) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastHit[domain].Add(c.delay)
	if next.Before(now) {
		next = now
	}
	c.lastHit[domain] = next
	c.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (c *Client) decorate(req *http.Request) {
	c.mu.Lock()
	ua := userAgents[c.uaIdx%len(userAgents)]
	c.uaIdx++
	c.mu.Unlock()

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", ua)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// FetchImage retrieves image bytes and their content type. A non-image
// content type is a fetch error: the caller asked for pixels.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	resp, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, "", &Error{URL: rawURL, Err: fmt.Errorf("content type %q is not an image", ct)}
	}
	return resp.Body, ct, nil
}

func domainOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
