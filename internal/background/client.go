package background

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/style"
)

// Client talks to a running daemon's control API. It doubles as a state
// querier for page contexts living outside the daemon process.
type Client struct {
	base string
	http *http.Client
}

var _ style.StateQuerier = (*Client)(nil)

// NewClient creates a client for the daemon at addr (host:port).
func NewClient(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

// Healthy reports whether the daemon answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	var out map[string]string
	return c.getJSON(ctx, "/healthz", &out) == nil
}

// Status fetches the daemon summary.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.getJSON(ctx, "/v1/status", &out)
	return out, err
}

// EnabledState asks the daemon whether hostname should get the theme.
func (c *Client) EnabledState(ctx context.Context, hostname string) (bool, bool, error) {
	var out StateResponse
	path := "/v1/state?hostname=" + url.QueryEscape(hostname)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return false, false, err
	}
	return out.Enabled, out.Blacklisted, nil
}

// Settings fetches the current sanitized record.
func (c *Client) Settings(ctx context.Context) (*settings.Settings, error) {
	out := &settings.Settings{}
	if err := c.getJSON(ctx, "/v1/settings", out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveSettings replaces the record. The daemon sanitizes before storing
// and returns what it actually kept.
func (c *Client) SaveSettings(ctx context.Context, s *settings.Settings) (*settings.Settings, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := &settings.Settings{}
	if err := c.roundTrip(ctx, http.MethodPut, "/v1/settings", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Enabled fetches the master switch.
func (c *Client) Enabled(ctx context.Context) (bool, error) {
	var out EnabledPayload
	err := c.getJSON(ctx, "/v1/enabled", &out)
	return out.Enabled, err
}

// SetEnabled flips the master switch.
func (c *Client) SetEnabled(ctx context.Context, enabled bool) error {
	body, err := json.Marshal(EnabledPayload{Enabled: enabled})
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, http.MethodPut, "/v1/enabled", body, nil)
}

// Export fetches the signed settings envelope as raw bytes.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/export", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// Import submits a raw or signed settings document and returns the
// sanitized record the daemon stored.
func (c *Client) Import(ctx context.Context, raw []byte) (*settings.Settings, error) {
	out := &settings.Settings{}
	if err := c.roundTrip(ctx, http.MethodPost, "/v1/import", raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
