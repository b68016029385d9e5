// Package httpds reads pivot input over HTTP(S).
package httpds

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config tunes retries and timeouts. Zero values pick defaults.
type Config struct {
	// Timeout bounds each attempt's time to response headers; the body is
	// streamed without a deadline.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transport error,
	// 429 or 5xx. Negative means 0.
	MaxRetries int
	// InitialBackoff doubles per retry up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Header is sent with every request.
	Header http.Header
	// Transport overrides http.DefaultTransport (tests).
	Transport http.RoundTripper
}

type client struct {
	http       *http.Client
	retries    int
	initial    time.Duration
	maxBackoff time.Duration
	header     http.Header
}

func newClient(cfg Config) *client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	tr := cfg.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	if t, ok := tr.(*http.Transport); ok {
		t = t.Clone()
		t.ResponseHeaderTimeout = cfg.Timeout
		tr = t
	}
	return &client{
		http:       &http.Client{Transport: tr},
		retries:    cfg.MaxRetries,
		initial:    cfg.InitialBackoff,
		maxBackoff: cfg.MaxBackoff,
		header:     cfg.Header.Clone(),
	}
}

// get issues GET url, retrying transient failures. A returned response
// always has a 2xx status; the caller owns its body.
func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(c.initial, attempt-1, c.maxBackoff)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("httpds: GET %s: %w", url, err)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case retryable(resp.StatusCode):
			resp.Body.Close()
			lastErr = fmt.Errorf("httpds: GET %s: status %d", url, resp.StatusCode)
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("httpds: GET %s: status %d", url, resp.StatusCode)
		}
	}
	return nil, lastErr
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff returns initial*2^n capped at max.
func backoff(initial time.Duration, n int, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < n && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
