// Package client is the HTTP client for a running powertray daemon.
// The CLI uses it so every command goes through the same serialized
// event loop as the tray menu.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/powertray/powertray/internal/api"
	"github.com/powertray/powertray/internal/tray"
)

const defaultTimeout = 5 * time.Second

// Client talks to the powertray control API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the daemon at host:port.
func New(host string, port int) *Client {
	return NewWithBase(fmt.Sprintf("http://%s:%d", host, port))
}

// NewWithBase creates a client for an explicit base URL.
func NewWithBase(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// RequestError is a non-2xx response from the daemon.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// Ping reports whether a daemon is answering on this address.
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.request(ctx, http.MethodGet, "/health", nil)
	return err == nil
}

// Status fetches the daemon's state snapshot.
func (c *Client) Status(ctx context.Context) (api.Status, error) {
	var st api.Status
	err := c.getJSON(ctx, "/api/status", &st)
	return st, err
}

// Plans fetches the plan list with the active plan flagged.
func (c *Client) Plans(ctx context.Context) ([]api.PlanEntry, error) {
	var plans []api.PlanEntry
	err := c.getJSON(ctx, "/api/plans", &plans)
	return plans, err
}

// Menu fetches the rendered menu model.
func (c *Client) Menu(ctx context.Context) (tray.Model, error) {
	var m tray.Model
	err := c.getJSON(ctx, "/api/menu", &m)
	return m, err
}

// Activate switches the active plan by identifier.
func (c *Client) Activate(ctx context.Context, id uuid.UUID) error {
	return c.post(ctx, "/api/plans/activate", map[string]string{"id": id.String()})
}

// ActivateIndex switches the active plan by menu position.
func (c *Client) ActivateIndex(ctx context.Context, index int) error {
	return c.post(ctx, "/api/plans/activate", map[string]int{"index": index})
}

// SetAfkTimeout selects the AFK timeout in minutes.
func (c *Client) SetAfkTimeout(ctx context.Context, minutes int) error {
	return c.post(ctx, "/api/afk/timeout", map[string]int{"minutes": minutes})
}

// SetAfkTarget selects the AFK target plan by identifier.
func (c *Client) SetAfkTarget(ctx context.Context, id uuid.UUID) error {
	return c.post(ctx, "/api/afk/target", map[string]string{"id": id.String()})
}

// SetAfkTargetIndex selects the AFK target plan by menu position.
func (c *Client) SetAfkTargetIndex(ctx context.Context, index int) error {
	return c.post(ctx, "/api/afk/target", map[string]int{"index": index})
}

// AfkOff disables the AFK feature, restoring the previous plan if the
// away plan is applied.
func (c *Client) AfkOff(ctx context.Context) error {
	return c.post(ctx, "/api/afk/off", nil)
}

// SetStartup toggles launch-at-login.
func (c *Client) SetStartup(ctx context.Context, enabled bool) error {
	return c.post(ctx, "/api/startup", map[string]bool{"enabled": enabled})
}

// Refresh asks the daemon to re-read OS state.
func (c *Client) Refresh(ctx context.Context) error {
	return c.post(ctx, "/api/refresh", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	payload, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	_, err := c.request(ctx, http.MethodPost, path, body)
	return err
}

func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var er struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(payload))
		if err := json.Unmarshal(payload, &er); err == nil && er.Error != "" {
			msg = er.Error
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}
	return payload, nil
}
