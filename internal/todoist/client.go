// Package todoist implements vaultmodel.RemoteClient against the real
// Todoist REST API (Sync API v9 for the bulk snapshot, REST API v2 for
// individual task mutations). It is a thin HTTP client: authentication,
// token storage, and the full Todoist API surface are all out of scope
// (§1) — this package only implements the four calls the reconciler
// needs.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

// DefaultSyncBaseURL and DefaultRESTBaseURL are the production Todoist
// API endpoints.
const (
	DefaultSyncBaseURL = "https://api.todoist.com/sync/v9"
	DefaultRESTBaseURL = "https://api.todoist.com/rest/v2"
)

const userAgent = "todoist-vault-sync/0.1"

// TokenSource provides OAuth2 bearer tokens, decoupling this package
// from internal/todoistauth the same way the teacher's graph.Client
// decouples from its auth package.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the real vaultmodel.RemoteClient implementation.
type Client struct {
	syncBaseURL string
	restBaseURL string
	httpClient  *http.Client
	token       TokenSource
	logger      *slog.Logger

	backoff func() (retry.Backoff, error)
}

// NewClient constructs a Client. A nil httpClient defaults to
// http.DefaultClient; a nil logger defaults to slog.Default().
func NewClient(syncBaseURL, restBaseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		syncBaseURL: syncBaseURL,
		restBaseURL: restBaseURL,
		httpClient:  httpClient,
		token:       token,
		logger:      logger,
		backoff:     defaultBackoff(1 * time.Second),
	}
}

// defaultBackoff builds the exponential-with-cap-and-max-retries policy
// used for every real request. Exposed as a constructor parameter
// indirectly via WithBackoffBase so tests don't have to wait out a real
// 1-second base delay across retries.
func defaultBackoff(base time.Duration) func() (retry.Backoff, error) {
	return func() (retry.Backoff, error) {
		b, err := retry.NewExponential(base)
		if err != nil {
			return nil, fmt.Errorf("todoist: build backoff: %w", err)
		}

		return retry.WithMaxRetries(5, retry.WithCappedDuration(60*time.Second, b)), nil
	}
}

// WithBackoffBase overrides the exponential backoff's base delay,
// intended for tests that want to exercise the retry path without
// waiting out real delays.
func (c *Client) WithBackoffBase(base time.Duration) *Client {
	c.backoff = defaultBackoff(base)
	return c
}

// doJSON executes method against url with an authenticated bearer token,
// retrying transient (5xx, 429, network) failures through go-retry's
// exponential backoff, and decodes a JSON response body into out (if
// non-nil).
func (c *Client) doJSON(ctx context.Context, method, url string, body any, out any) error {
	var encoded []byte

	if body != nil {
		var err error

		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("todoist: encode request body: %w", err)
		}

	}

	var resp *http.Response

	b, err := c.backoff()
	if err != nil {
		return err
	}

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		// A fresh reader per attempt: a retried request resends the full body.
		var payload io.Reader
		if encoded != nil {
			payload = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, payload)
		if err != nil {
			return fmt.Errorf("todoist: build request: %w", err)
		}

		token, err := c.token.Token(ctx)
		if err != nil {
			return fmt.Errorf("todoist: get token: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", userAgent)

		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return retry.RetryableError(fmt.Errorf("todoist: request %s %s: %w", method, url, doErr))
		}

		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			r.Body.Close()
			return retry.RetryableError(fmt.Errorf("todoist: %s %s returned %d", method, url, r.StatusCode))
		}

		if r.StatusCode >= 400 {
			defer r.Body.Close()

			detail, _ := io.ReadAll(r.Body)

			return fmt.Errorf("%w: %s %s returned %d: %s", ErrRequestFailed, method, url, r.StatusCode, string(detail))
		}

		resp = r

		return nil
	})
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("todoist: decode response from %s %s: %w", method, url, err)
	}

	return nil
}

var _ vaultmodel.RemoteClient = (*Client)(nil)
