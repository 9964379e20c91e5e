// Package api implements the vendor HTTP client: a retrying fetcher plus the
// adapters that shape vendor payloads into domain types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"pontoctl/internal/errs"
	"pontoctl/internal/model"
)

const (
	maxRetries  = 5
	backoffStep = 300 * time.Millisecond
)

// Client talks to the vendor time-clock API. It is stateless across calls
// except for the session used to build auth headers; the retry budget is
// scoped to one logical request.
type Client struct {
	base    string
	http    *http.Client
	sess    *model.Session
	backoff func() retry.Backoff // fresh backoff per logical request
	log     *zap.Logger

	// employee is remembered from the last session fetch for the register
	// payload; the vendor echoes it back verbatim.
	employee json.RawMessage
}

// New creates a Client against baseURL.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		backoff: defaultBackoff,
		log:     log,
	}
}

// SetSession installs the auth context used for subsequent requests. Pass nil
// on logout.
func (c *Client) SetSession(sess *model.Session) { c.sess = sess }

// Session returns the current auth context, nil when logged out.
func (c *Client) Session() *model.Session { return c.sess }

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(maxRetries, linearBackoff(backoffStep))
}

// linearBackoff waits step, 2*step, 3*step... between attempts.
func linearBackoff(step time.Duration) retry.Backoff {
	var attempt int
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * step, false
	})
}

// Request performs one logical call. Transient failures (transport errors,
// 404, 5xx) are retried up to maxRetries times with linear backoff; any other
// non-success status fails immediately. On exhaustion the last error
// surfaces, carrying the status code and a truncated body snippet.
func (c *Client) Request(ctx context.Context, method, path string, body any, extra http.Header) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.base + path
	}

	attempt := 0
	var out []byte
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.sess.LoggedIn() {
			req.Header.Set("access-token", c.sess.Token)
			req.Header.Set("client", c.sess.Client)
			req.Header.Set("uid", c.sess.UID)
		}
		for k, vs := range extra {
			req.Header[http.CanonicalHeaderKey(k)] = vs
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug("transport failure",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(fmt.Errorf("%s %s: %w", method, path, err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s %s: read body: %w", method, path, err))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := errs.NewStatusError(resp.StatusCode, data)
			if serr.Transient() {
				c.log.Debug("retryable status",
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt))
				return retry.RetryableError(serr)
			}
			return serr
		}
		out = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
