// Package upload sends export archives to an OAuth2-protected storage endpoint.
//
// Authorization is a one-time authorization-code exchange (Authorize). The
// resulting token is persisted to a credential file and reused, and refreshed
// through its refresh token, on every Upload.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/gorewood/chatmd/internal/atomicfile"
	"github.com/gorewood/chatmd/internal/config"
	"github.com/gorewood/chatmd/internal/output"
)

// ErrNotAuthorized is returned when no token has been stored yet.
var ErrNotAuthorized = errors.New("no stored upload token")

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Result describes a completed upload.
type Result struct {
	Name     string `json:"name"`
	Bytes    int64  `json:"bytes"`
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
}

// Client uploads archives on behalf of an authorized user.
type Client struct {
	endpoint   string
	oauth      *oauth2.Config
	tokenFile  string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client from the upload settings. The client secret comes
// from the environment, never from the config file.
func New(cfg config.Upload, clientSecret string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		tokenFile: cfg.TokenFile,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: clientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

// AuthCodeURL returns the URL the user visits to grant access.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authorize exchanges an authorization code for a token and stores it.
func (c *Client) Authorize(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return output.NewUserError("authorization code is empty")
	}

	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return output.NewUserErrorWithCause("authorization code exchange failed", err)
	}
	if err := c.saveToken(tok); err != nil {
		return output.NewSystemErrorWithCause("failed to store upload token", err)
	}

	c.logger.Info("upload token stored", "path", c.tokenFile)
	return nil
}

// Upload POSTs the archive at path to the endpoint as application/zip with
// ?name=<base name>. A token refreshed during the request is written back.
func (c *Client) Upload(ctx context.Context, path string) (*Result, error) {
	if c.endpoint == "" {
		return nil, output.NewUserError("upload endpoint is not configured")
	}

	tok, err := c.loadToken()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, output.NewUserErrorWithCause(fmt.Sprintf("cannot open archive %s", path), err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	info, err := f.Stat()
	if err != nil {
		return nil, output.NewSystemErrorWithCause(fmt.Sprintf("cannot stat archive %s", path), err)
	}

	target, err := c.targetURL(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, f)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to create request", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/zip")

	ctx = c.withHTTPClient(ctx)
	source := c.oauth.TokenSource(ctx, tok)
	resp, err := oauth2.NewClient(ctx, source).Do(req)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("upload request failed", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read-only body

	c.persistRefreshed(tok, source)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("upload rejected (HTTP %d)", resp.StatusCode)
		if text := strings.TrimSpace(string(body)); text != "" {
			msg += ": " + text
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, output.NewUserError(msg + "; run 'chatmd auth' to re-authorize")
		}
		return nil, output.NewSystemError(msg)
	}

	result := &Result{
		Name:     filepath.Base(path),
		Bytes:    info.Size(),
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
	}
	c.logger.Info("archive uploaded", "name", result.Name, "bytes", result.Bytes, "status", result.Status)
	return result, nil
}

func (c *Client) targetURL(name string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", output.NewUserErrorWithCause(fmt.Sprintf("invalid upload endpoint %q", c.endpoint), err)
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// withHTTPClient makes oauth2 use the client's transport for token calls.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// persistRefreshed saves the token if the source had to refresh it.
// Failing to save is logged; the upload itself already succeeded or failed.
func (c *Client) persistRefreshed(old *oauth2.Token, source oauth2.TokenSource) {
	current, err := source.Token()
	if err != nil || current.AccessToken == old.AccessToken {
		return
	}
	if err := c.saveToken(current); err != nil {
		c.logger.Warn("failed to store refreshed upload token", "path", c.tokenFile, "error", err)
		return
	}
	c.logger.Debug("upload token refreshed", "path", c.tokenFile)
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, output.NewUserErrorWithCause("not authorized for upload; run 'chatmd auth' first", ErrNotAuthorized)
		}
		return nil, output.NewSystemErrorWithCause(fmt.Sprintf("cannot read token file %s", c.tokenFile), err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, output.NewUserErrorWithCause(fmt.Sprintf("token file %s is corrupt; run 'chatmd auth' again", c.tokenFile), err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, output.NewUserErrorWithCause("stored upload token is empty; run 'chatmd auth' again", ErrNotAuthorized)
	}
	return &tok, nil
}

func (c *Client) saveToken(tok *oauth2.Token) error {
	if c.tokenFile == "" {
		return errors.New("no token file configured")
	}
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return atomicfile.WriteFile(c.tokenFile, data, 0o600)
}
