package readiness

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultPath is probed when no path is configured.
	DefaultPath = "/healthcheck"

	// DefaultRequestTimeout bounds a single probe request.
	DefaultRequestTimeout = 2 * time.Second

	// DefaultBackoff is the pause after a failed probe.
	DefaultBackoff = time.Second
)

// HTTPChecker probes GET http://<addr><Path>. Any status in [200, 500) is
// healthy: a 4xx still proves the server is accepting requests.
type HTTPChecker struct {
	Path           string
	RequestTimeout time.Duration
	Backoff        time.Duration
	Client         *http.Client
	Clock          clock.Clock
}

// NewHTTPChecker returns a checker with default timeouts. An empty path
// means DefaultPath; a nil clock means the wall clock.
func NewHTTPChecker(path string, clk clock.Clock) *HTTPChecker {
	if path == "" {
		path = DefaultPath
	}
	if clk == nil {
		clk = clock.New()
	}
	return &HTTPChecker{
		Path:           path,
		RequestTimeout: DefaultRequestTimeout,
		Backoff:        DefaultBackoff,
		// Probes are one-shot; pooled connections would outlive the poll.
		Client: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
		Clock:  clk,
	}
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context, addr string) bool {
	if c.probe(ctx, addr) {
		return true
	}
	select {
	case <-ctx.Done():
	case <-c.Clock.After(c.Backoff):
	}
	return false
}

func (c *HTTPChecker) probe(ctx context.Context, addr string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, c.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+addr+c.Path, nil)
	if err != nil {
		return false
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusInternalServerError
}
