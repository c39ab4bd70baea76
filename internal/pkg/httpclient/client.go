package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	maxAttempts  = 2
	retryBackoff = 2 * time.Second
)

// Client is the single outbound HTTP client shared by every crawl task.
// It enforces the global connection caps, the per-request timeout, optional
// upstream proxy routing, a politeness rate limit and a per-host circuit
// breaker, and retries transport-level failures and 5xx responses once.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	backoff    time.Duration

	breakerMu sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
}

func New(cfg *config.HTTPConfig) (*Client, error) {
	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConns:        cfg.MaxKeepaliveConnections,
		MaxIdleConnsPerHost: cfg.MaxKeepaliveConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout: cfg.DialTimeout,
		}).DialContext,
	}
	if cfg.UseProxies {
		proxyURL, err := url.Parse(cfg.RotatingProxyEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse rotating proxy endpoint: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		slog.Info("Outbound requests routed via rotating proxy", "endpoint", proxyURL.Host)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.MaxConnections)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		backoff:    retryBackoff,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

// Do issues the request described by rd and returns the raw response with the
// request context attached. Any HTTP response, including 4xx/5xx, is returned
// to the caller; an error means no usable response could be obtained. 5xx
// responses and transport failures are retried once with a fixed backoff,
// 4xx responses are not.
func (c *Client) Do(ctx context.Context, rd models.RequestDetail) (*models.RawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	breaker := c.breakerFor(rd.URL)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		result, err := breaker.Execute(func() (any, error) {
			return c.doOnce(ctx, rd)
		})
		if err != nil {
			lastErr = err
			slog.Warn("Request attempt failed", "url", rd.URL, "attempt", attempt, "error", err)
			continue
		}
		raw := result.(*models.RawResponse)
		if raw.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("status %d from %s", raw.StatusCode, rd.URL)
			slog.Warn("Server error response", "url", rd.URL, "attempt", attempt, "status", raw.StatusCode)
			continue
		}
		return raw, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, rd models.RequestDetail) (*models.RawResponse, error) {
	method := http.MethodGet
	var body io.Reader
	if len(rd.Payload) > 0 {
		method = http.MethodPost
		body = bytes.NewReader(rd.Payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rd.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range rd.Headers {
		req.Header.Set(k, v)
	}
	if rd.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rd.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &models.RawResponse{
		Body:       data,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Request:    rd,
	}, nil
}

// breakerFor returns the circuit breaker for the request's host, creating it
// on first use. A tripped breaker fails the host fast instead of holding
// connections against a dead provider.
func (c *Client) breakerFor(rawURL string) *gobreaker.CircuitBreaker {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.breakerMu.Lock()
	defer c.breakerMu.Unlock()
	if b, ok := c.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state change", "host", name, "from", from.String(), "to", to.String())
		},
	})
	c.breakers[host] = b
	return b
}

// SetRetryBackoff overrides the fixed retry delay. Tests use this to avoid
// sleeping for the production backoff.
func (c *Client) SetRetryBackoff(d time.Duration) { c.backoff = d }
