// Package mealie provides the REST client for a Mealie instance, the
// migration's write target. All mutating calls carry the account's bearer
// token and retry transient failures with doubling backoff.
package mealie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeTarget = (*Client)(nil)

// ── Client ───────────────────────────────────────────────────────

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets how many attempts each call gets before giving up.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryDelay sets the initial delay between attempts. The delay
// doubles on each retry up to ten seconds.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.delay = d }
}

// WithClock overrides the clock used for retry backoff.
func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) { c.clk = clk }
}

// Client talks to a Mealie server.
type Client struct {
	base     string
	token    string
	http     *http.Client
	clk      clock.Clock
	attempts int
	delay    time.Duration
	log      *logger.Logger
}

// NewClient creates a Mealie API client.
//   - base:  server root, e.g. "http://mealie.local:9925"
//   - token: an API token generated in the Mealie user profile
func NewClient(base, token string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		base:     strings.TrimRight(base, "/"),
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		clk:      clock.WallClock,
		attempts: 3,
		delay:    500 * time.Millisecond,
		log:      log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ping verifies the server is reachable and logs its version.
func (c *Client) Ping(ctx context.Context) error {
	var about struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/app/about", nil, &about); err != nil {
		return err
	}
	c.log.Info("mealie: connected to %s (version %s)", c.base, about.Version)
	return nil
}

// ── Request plumbing ─────────────────────────────────────────────

// apiError is a non-2xx response that does not map to a sentinel.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.status, truncate(e.body, 200))
}

// do sends one authenticated JSON request with retry, decoding the
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mealie: marshal %s %s: %w", method, path, err)
		}
	}

	return c.retryCall(ctx, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
		if err != nil {
			return fmt.Errorf("mealie: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.log.Debug("mealie: %s %s (%d bytes)", method, path, len(payload))

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("mealie: %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("mealie: read response: %w", err)
		}
		if err := statusErr(method, path, resp.StatusCode, respBody); err != nil {
			return err
		}
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("mealie: unmarshal %s %s response: %w", method, path, err)
			}
		}
		return nil
	})
}

// statusErr maps a response status to an error: auth failures, misses,
// and conflicts become sentinels callers can test with errors.Is, any
// other non-2xx status becomes an apiError. 2xx returns nil.
func statusErr(method, path string, status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("mealie: %s %s: %w", method, path, domain.ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("mealie: %s %s: %w", method, path, domain.ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("mealie: %s %s: %w", method, path, domain.ErrAlreadyExists)
	case status < 200 || status >= 300:
		return fmt.Errorf("mealie: %s %s: %w", method, path, &apiError{status: status, body: string(body)})
	}
	return nil
}

// retryCall runs one API call with bounded retries. Only transient
// failures repeat; sentinel-mapped statuses fail immediately.
func (c *Client) retryCall(ctx context.Context, call func() error) error {
	return retry.Call(retry.CallArgs{
		Func: call,
		IsFatalError: func(err error) bool {
			return !transient(err)
		},
		NotifyFunc: func(err error, attempt int) {
			c.log.Warn("mealie: attempt %d failed, will retry: %v", attempt, err)
		},
		Attempts:    c.attempts,
		Delay:       c.delay,
		MaxDelay:    10 * time.Second,
		BackoffFunc: retry.DoubleDelay,
		Clock:       c.clk,
		Stop:        ctx.Done(),
	})
}

// transient reports whether an error is worth retrying: connection-level
// failures, rate limiting, and server-side 5xx responses.
func transient(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status == http.StatusTooManyRequests || ae.status >= 500
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
