// Package rail holds the HTTP plumbing shared by the payment rail clients.
package rail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/lnstable/internal/infrastructure/metrics"
)

const maxResponseBytes = 1 << 20

// StatusError is a non-2xx response from a rail.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Request describes one call to a rail API.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Header    http.Header
	// Sign, when set, is called on the final request with the encoded body.
	Sign func(req *http.Request, body []byte)
}

// Client sends JSON requests to one rail. GET requests are retried with
// exponential backoff on transport errors and 5xx responses; anything else
// is sent exactly once.
type Client struct {
	name       string
	baseURL    string
	http       *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	maxElapsed time.Duration
}

// NewClient creates a Client for the rail called name.
func NewClient(name, baseURL string, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Client {
	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		metrics:    m,
		logger:     logger.With().Str("rail", name).Logger(),
		maxElapsed: 3 * time.Second,
	}
}

// Name is the rail name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Do sends r and decodes the JSON response into out, which may be nil.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	start := time.Now()

	var body []byte
	if r.Body != nil {
		var err error
		if body, err = json.Marshal(r.Body); err != nil {
			return fmt.Errorf("%s %s: encode request: %w", c.name, r.Operation, err)
		}
	}

	send := func() error {
		return c.send(ctx, r, body, out)
	}

	var err error
	if r.Method == http.MethodGet {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 100 * time.Millisecond
		b.MaxElapsedTime = c.maxElapsed
		err = backoff.RetryNotify(func() error {
			err := send()
			if err != nil && !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
			c.logger.Warn().Err(err).Str("operation", r.Operation).Dur("wait", wait).Msg("rail request failed, retrying")
		})
	} else {
		err = send()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	c.observe(r.Operation, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.name, r.Operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, r Request, body []byte, out any) error {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Sign != nil {
		r.Sign(req, body)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) observe(operation string, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}

	status := "ok"
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		status = strconv.Itoa(statusErr.StatusCode)
	case err != nil:
		status = "error"
	}

	c.metrics.RailRequests.WithLabelValues(c.name, operation, status).Inc()
	c.metrics.RailDuration.WithLabelValues(c.name, operation).Observe(elapsed.Seconds())
}

func retryable(err error) bool {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
