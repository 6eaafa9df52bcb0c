// Package backend is the REST client for the platform API. It is the only
// place HopeBridge talks to the system of record.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hopebridge/hopebridge/internal/platform/httpx"
)

const maxErrorBody = 64 * 1024

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s %s: %d", e.Method, e.Path, e.Status)
}

// Unwrap exposes the matching httpx sentinel.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	case http.StatusForbidden:
		return httpx.ErrForbidden
	case http.StatusNotFound:
		return httpx.ErrNotFound
	case http.StatusConflict:
		return httpx.ErrDuplicate
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return httpx.ErrValidation
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return httpx.ErrUnavailable
	}
	return nil
}

// Client wraps interactions with the platform REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// envelope is the API's standard wrapper. Bare JSON bodies are accepted too.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Get decodes GET path into out.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, token, path, nil, out)
}

// Post sends body as JSON and decodes the answer into out when non-nil.
func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, token, path, body, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.Do(ctx, http.MethodDelete, token, path, nil, nil)
}

// Do performs one API call.
func (c *Client) Do(ctx context.Context, method, token, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w: %v", method, path, httpx.ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug("backend call", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read %s %s: %w", method, path, err)
	}
	if err := decode(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decode(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty body")
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
