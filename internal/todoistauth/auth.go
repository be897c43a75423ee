// Package todoistauth provides the thin OAuth2 plumbing the CLI needs to
// obtain a bearer token for internal/todoist. Token storage and the
// interactive authorization flow are explicitly out of scope for the
// reconciliation engine itself (§1) — this package exists only so
// "sync" has some way to get a *http.Client, not as a first-class
// component of the spec.
package todoistauth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/connradolisboa/todoist-vault-sync/internal/tokenfile"
)

// ErrNotLoggedIn indicates no token file exists at the configured path.
var ErrNotLoggedIn = errors.New("todoistauth: not logged in")

var endpoint = oauth2.Endpoint{
	AuthURL:  "https://todoist.com/oauth/authorize",
	TokenURL: "https://todoist.com/oauth/access_token",
}

var scopes = []string{"data:read_write"}

// TokenSource is the narrow interface internal/todoist needs: a single
// call that returns a currently-valid access token, refreshing under the
// hood when needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type tokenBridge struct {
	src    oauth2.TokenSource
	logger *slog.Logger
}

func (b *tokenBridge) Token(ctx context.Context) (string, error) {
	tok, err := b.src.Token()
	if err != nil {
		return "", fmt.Errorf("todoistauth: refresh token: %w", err)
	}

	return tok.AccessToken, nil
}

// FromPath loads a previously-saved token from tokenPath and returns a
// TokenSource that auto-refreshes and persists the refreshed token back
// to the same file via oauth2.Config.OnTokenChange, the same pattern the
// teacher uses for its Microsoft Graph tokens.
func FromPath(ctx context.Context, clientID, clientSecret, tokenPath string, logger *slog.Logger) (TokenSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tok, meta, err := tokenfile.Load(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("todoistauth: load token: %w", err)
	}

	if tok == nil {
		return nil, ErrNotLoggedIn
	}

	expired := !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now())
	logger.Info("todoistauth: loaded saved token", "path", tokenPath, "expiry", tok.Expiry, "expired", expired)

	cfg := oauthConfig(clientID, clientSecret, tokenPath, meta, logger)
	src := cfg.TokenSource(ctx, tok)

	return &tokenBridge{src: src, logger: logger}, nil
}

// ExchangeCode completes the authorization-code leg of the OAuth2 flow
// (the step after the user approves access in their browser and Todoist
// redirects back with a code), saving the resulting token to tokenPath.
func ExchangeCode(ctx context.Context, clientID, clientSecret, tokenPath, code string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := oauthConfig(clientID, clientSecret, tokenPath, nil, logger)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("todoistauth: exchange code: %w", err)
	}

	if err := tokenfile.Save(tokenPath, tok, nil); err != nil {
		return fmt.Errorf("todoistauth: save token: %w", err)
	}

	logger.Info("todoistauth: saved new token", "path", tokenPath, "expiry", tok.Expiry)

	return nil
}

// AuthCodeURL builds the URL the user visits to approve access, the first
// leg of the authorization-code flow ExchangeCode completes.
func AuthCodeURL(clientID, redirectURL, state string) string {
	cfg := &oauth2.Config{
		ClientID:    clientID,
		Scopes:      scopes,
		Endpoint:    endpoint,
		RedirectURL: redirectURL,
	}

	return cfg.AuthCodeURL(state)
}

// Logout removes the saved token file, if any.
func Logout(tokenPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	err := os.Remove(tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("todoistauth: remove token file: %w", err)
	}

	logger.Info("todoistauth: removed token file", "path", tokenPath)

	return nil
}

func oauthConfig(clientID, clientSecret, tokenPath string, meta map[string]string, logger *slog.Logger) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     endpoint,
		OnTokenChange: func(tok *oauth2.Token) {
			logger.Info("todoistauth: token refreshed", "path", tokenPath, "new_expiry", tok.Expiry)

			if err := tokenfile.Save(tokenPath, tok, meta); err != nil {
				logger.Warn("todoistauth: failed to persist refreshed token", "path", tokenPath, "error", err)
			}
		},
	}
}
