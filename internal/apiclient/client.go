package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token attached to every call. An empty
// token means the call goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// APIError is the single user-visible failure of a remote call: the message
// from the response payload when present, otherwise an operation fallback.
type APIError struct {
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an APIError carrying the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// SetTokenSource wires the session into the client. Call it before the
// client is shared.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// envelope is the response shape of the remote API: {success, data, token, message}.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := fallback
		var eb errorBody
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil {
			if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
				msg = eb.Message
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values, fallback string) (T, error) {
	var env envelope[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &env, fallback); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
