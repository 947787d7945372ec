// Package client provides an HTTP client for the studio API.
package client

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

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/sse"
)

// Client is an HTTP client for the studio API.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	// streamClient has no overall timeout; streams end when the server says so.
	streamClient *http.Client
}

// NewClient creates a new studio client bound to a session.
func NewClient(baseURL, sessionID string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		streamClient: &http.Client{},
	}
}

// APIError is a non-2xx response from the studio.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents an error response from the studio.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DocumentResponse is the body of a document read.
type DocumentResponse struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}
	return req, nil
}

func decodeError(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	var errResp ErrorResponse
	if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call studio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Chat calls POST /api/chat and returns the decoded event stream. Errors
// raised before streaming starts are returned as *APIError.
func (c *Client) Chat(ctx context.Context, in service.ChatInput) (<-chan domain.StreamEvent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", in)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call studio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	events := sse.Decode(ctx, resp.Body)
	out := make(chan domain.StreamEvent)
	go func() {
		defer resp.Body.Close()
		defer close(out)
		for ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// Generate calls POST /api/generate.
func (c *Client) Generate(ctx context.Context, in service.GenerateInput) (*service.GenerateResult, error) {
	var res service.GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/generate", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ReadDocument calls GET /api/specs.
func (c *Client) ReadDocument(ctx context.Context, id string) (*DocumentResponse, error) {
	var doc DocumentResponse
	if err := c.do(ctx, http.MethodGet, "/api/specs?doc="+url.QueryEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteDocument calls PUT /api/specs.
func (c *Client) WriteDocument(ctx context.Context, id, content string) error {
	body := map[string]string{"content": content}
	return c.do(ctx, http.MethodPut, "/api/specs?doc="+url.QueryEscape(id), body, nil)
}

// LoadState calls GET /api/state.
func (c *Client) LoadState(ctx context.Context) (*domain.StudioState, error) {
	var state domain.StudioState
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState calls PUT /api/state.
func (c *Client) SaveState(ctx context.Context, state *domain.StudioState) error {
	return c.do(ctx, http.MethodPut, "/api/state", state, nil)
}
