// Package remote is the HTTP implementation of the remote encounter
// contract. Transport failures are wrapped as sync.ErrUnavailable and
// authentication failures as sync.ErrSessionExpired so the orchestrator can
// route each to its own recovery path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	syncpkg "github.com/occuhealth/capture/internal/sync"
	"github.com/occuhealth/capture/internal/platform/session"
)

// Client talks to the remote encounter service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTokenSource sets the bearer-token source attached to every request.
func WithTokenSource(token func() string) ClientOption {
	return func(cl *Client) { cl.token = token }
}

// NewClient creates a client for the encounter service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      func() string { return "" },
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateEncounter implements sync.RemoteService.
func (c *Client) CreateEncounter(ctx context.Context, payload map[string]interface{}) (string, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, "/api/encounters", payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateEncounter implements sync.RemoteService.
func (c *Client) UpdateEncounter(ctx context.Context, id string, payload map[string]interface{}) (string, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPut, "/api/encounters/"+id, payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SubmitForReview implements sync.RemoteService.
func (c *Client) SubmitForReview(ctx context.Context, id string, payload map[string]interface{}) (*syncpkg.SubmitResponse, error) {
	var resp syncpkg.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/encounters/"+id+"/submit", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	token := c.token()
	// Pre-flight: a locally expired token is a session failure, not a
	// connectivity failure, and costs no round trip to report.
	if session.TokenExpired(token, c.now()) {
		return syncpkg.ErrSessionExpired
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", syncpkg.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return syncpkg.ErrSessionExpired
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %d", syncpkg.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("remote rejected request: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
