// Package gateway is the typed client for the upstream preference API. The
// API is external; this package only speaks its request/response contract
// and converts transport failures into errs.GatewayError values.
package gateway

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

	"github.com/GregMSThompson/dashboard-engine/internal/errs"
	"github.com/GregMSThompson/dashboard-engine/internal/middleware"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

// PreferenceGateway is the remote boundary for reading and writing the
// persisted dashboard configuration. Implemented by *Client and by test
// fakes.
type PreferenceGateway interface {
	GetPreferences(ctx context.Context) (models.DashboardPreference, error)
	SavePreferences(ctx context.Context, widgets []models.WidgetInstance, layout []models.LayoutCell) (models.DashboardPreference, error)
	UpdateLayout(ctx context.Context, layout []models.LayoutCell) error
	ResetToDefaults(ctx context.Context) (models.DashboardPreference, error)
}

// Ensure Client implements PreferenceGateway at compile time.
var _ PreferenceGateway = (*Client)(nil)

// Client talks to the preference endpoints of the finance API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "dashboard-engine/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL, e.g.
// "https://api.example.com".
func NewClient(baseURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway url %q must include scheme and host", baseURL)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// envelope matches the API's success wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type savePreferencesRequest struct {
	Widgets []models.WidgetInstance `json:"widgets"`
	Layout  []models.LayoutCell     `json:"layout"`
}

type updateLayoutRequest struct {
	Layout []models.LayoutCell `json:"layout"`
}

// GetPreferences retrieves the user's current dashboard preference document.
func (c *Client) GetPreferences(ctx context.Context) (models.DashboardPreference, error) {
	var pref models.DashboardPreference
	if err := c.do(ctx, http.MethodGet, "/dashboard/preferences", nil, &pref); err != nil {
		return models.DashboardPreference{}, wrap("load", err)
	}
	return pref, nil
}

// SavePreferences writes the full widget and layout set and returns the
// server's authoritative copy.
func (c *Client) SavePreferences(ctx context.Context, widgets []models.WidgetInstance, layout []models.LayoutCell) (models.DashboardPreference, error) {
	body := savePreferencesRequest{Widgets: widgets, Layout: layout}
	var pref models.DashboardPreference
	if err := c.do(ctx, http.MethodPut, "/dashboard/preferences", body, &pref); err != nil {
		return models.DashboardPreference{}, wrap("save", err)
	}
	return pref, nil
}

// UpdateLayout writes the layout only. The server acknowledges without a
// body; this is the debounced write path.
func (c *Client) UpdateLayout(ctx context.Context, layout []models.LayoutCell) error {
	body := updateLayoutRequest{Layout: layout}
	if err := c.do(ctx, http.MethodPatch, "/dashboard/preferences/layout", body, nil); err != nil {
		return wrap("updateLayout", err)
	}
	return nil
}

// ResetToDefaults asks the server for a fresh default configuration.
func (c *Client) ResetToDefaults(ctx context.Context) (models.DashboardPreference, error) {
	var pref models.DashboardPreference
	if err := c.do(ctx, http.MethodPost, "/dashboard/preferences/reset", nil, &pref); err != nil {
		return models.DashboardPreference{}, wrap("reset", err)
	}
	return pref, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &requestError{status: 0, err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return &requestError{status: 0, err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := middleware.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &requestError{status: 0, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &requestError{
			status: resp.StatusCode,
			err:    fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &requestError{status: resp.StatusCode, err: fmt.Errorf("decode response: %w", err)}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &requestError{status: resp.StatusCode, err: fmt.Errorf("decode response data: %w", err)}
	}
	return nil
}

// requestError carries the HTTP status through to the errs wrapper.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }

func wrap(operation string, err error) error {
	status := 0
	if re, ok := err.(*requestError); ok {
		status = re.status
	}
	return errs.NewGatewayError(operation, err.Error(), status, err)
}
