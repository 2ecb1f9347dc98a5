// Package fetch wraps all outbound provider traffic with rate limiting,
// retry/backoff, credential injection and cache-aside reads.
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"price-desk/internal/cache"
	"price-desk/internal/httpx"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36"

	// consecutive empty results on plausible queries before we raise the
	// one-time structure-drift alert
	driftThreshold = 3
)

// RateLimitConfig bounds request pacing per provider. The effective spacing is
// the larger of MinDelay and the spacing implied by RequestsPerMinute.
type RateLimitConfig struct {
	RequestsPerMinute int
	MinDelay          time.Duration
}

// Config is the per-provider fetch configuration.
type Config struct {
	Provider   string
	BaseURL    string
	UseBrowser bool
	RateLimit  RateLimitConfig
	Retry      httpx.RetryConfig
	CacheTTL   time.Duration
	Timeout    time.Duration
	UserAgent  string
}

// Result is one fetched body plus where it came from.
type Result struct {
	Body      []byte
	FromCache bool
}

// Client is the rate-limited fetch wrapper for exactly one provider. Safe for
// concurrent use; concurrent callers on the same client queue behind its
// rate-limit spacing.
type Client struct {
	cfg    Config
	cache  *cache.Store
	creds  CredentialProvider
	http   *http.Client
	nav    Navigator
	logger *slog.Logger

	mu          sync.Mutex // serializes request spacing
	lastRequest time.Time

	healthMu     sync.Mutex
	emptyStreak  int
	driftAlerted bool
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCredentials(cp CredentialProvider) Option {
	return func(c *Client) { c.creds = cp }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

func New(cfg Config, store *cache.Store, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &Client{
		cfg:    cfg,
		cache:  store,
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.nav == nil && cfg.UseBrowser {
		c.nav = &ChromeNavigator{UserAgent: cfg.UserAgent}
	}
	return c
}

// Fetch returns the body for base URL + path, serving from cache when a valid
// entry exists. Network failures come back classified as AuthError,
// RateLimitError or NetworkError.
func (c *Client) Fetch(ctx context.Context, path string) (Result, error) {
	url := joinURL(c.cfg.BaseURL, path)
	key := cache.Key(c.cfg.Provider, "fetch", path)

	if body, ok := c.cache.Get(ctx, key); ok {
		return Result{Body: body, FromCache: true}, nil
	}

	if err := c.waitTurn(ctx); err != nil {
		return Result{}, &NetworkError{Provider: c.cfg.Provider, Err: err}
	}

	fctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body []byte
	var err error
	if c.cfg.UseBrowser {
		body, err = c.nav.Navigate(fctx, url)
		if err != nil {
			return Result{}, &NetworkError{Provider: c.cfg.Provider, Err: err}
		}
	} else {
		body, err = c.doHTTP(fctx, url)
		if err != nil {
			return Result{}, err
		}
	}

	c.cache.Set(ctx, key, body, c.cfg.CacheTTL)
	return Result{Body: body}, nil
}

// ClearCache drops every cached body for this provider.
func (c *Client) ClearCache(ctx context.Context) int {
	return c.cache.ClearPrefix(ctx, cache.Key(c.cfg.Provider, "fetch")+":")
}

// waitTurn enforces minimum inter-request spacing for this provider. The lock
// is held through the sleep on purpose: callers on the same provider line wait
// their turn, other providers are unaffected.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	spacing := c.cfg.RateLimit.MinDelay
	if rpm := c.cfg.RateLimit.RequestsPerMinute; rpm > 0 {
		if per := time.Minute / time.Duration(rpm); per > spacing {
			spacing = per
		}
	}

	if spacing > 0 && !c.lastRequest.IsZero() {
		if wait := spacing - time.Since(c.lastRequest); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) doHTTP(ctx context.Context, url string) ([]byte, error) {
	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept-Encoding", "gzip, br")
		if c.creds != nil {
			if extra, ok := c.creds.Headers(ctx); ok {
				for k, vals := range extra {
					for _, v := range vals {
						req.Header.Add(k, v)
					}
				}
			}
		}
		return req, nil
	}

	resp, body, err := httpx.DoWithRetry(ctx, c.http, buildReq, c.cfg.Retry)
	if err != nil {
		return nil, c.classify(err)
	}

	decoded, err := decodeBody(resp.Header.Get("Content-Encoding"), body)
	if err != nil {
		return nil, &NetworkError{Provider: c.cfg.Provider, Err: err}
	}
	return decoded, nil
}

func (c *Client) classify(err error) error {
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		switch herr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Provider: c.cfg.Provider, StatusCode: herr.StatusCode}
		case http.StatusTooManyRequests:
			return &RateLimitError{Provider: c.cfg.Provider, RetryAfter: 5 * time.Second}
		}
	}
	return &NetworkError{Provider: c.cfg.Provider, Err: err}
}

// ObserveResults feeds the structural-health check. Adapters call it with the
// result count for queries that should plausibly match something; a streak of
// zeros raises a one-time drift alert, distinguishable from a hard failure.
func (c *Client) ObserveResults(query string, count int) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	if count > 0 {
		c.emptyStreak = 0
		c.driftAlerted = false
		return
	}

	c.emptyStreak++
	if c.emptyStreak >= driftThreshold && !c.driftAlerted {
		c.driftAlerted = true
		c.logger.Warn("possible page-structure drift: repeated empty results",
			"provider", c.cfg.Provider,
			"alertId", uuid.NewString(),
			"streak", c.emptyStreak,
			"lastQuery", query,
		)
	}
}

// decodeBody reverses Content-Encoding. We advertise gzip and br ourselves,
// so the transport does not decompress for us.
func decodeBody(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return body, nil
	}
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
