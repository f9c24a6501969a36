// Package api is the HTTP client for the storefront backend. Every call
// follows the backend's uniform contract: JSON bodies both ways, an
// "error" field on non-success responses, and a cookie-scoped session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"
)

// Error is a non-success response from the backend, carrying the
// server-provided message when the body had one.
type Error struct {
	Status  int
	Message string
}

// Error returns the server message, or a generic fallback.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("error %d", e.Status)
}

// roundTrip carries a completed exchange through the circuit breaker.
// Non-2xx statuses are data, not breaker failures; only transport errors
// count against the breaker.
type roundTrip struct {
	status int
	body   []byte
}

// Client talks to the storefront backend.
type Client struct {
	base    *url.URL
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[roundTrip]
}

// New creates a Client for the given base URL. The cookie jar scopes all
// calls to the current session, matching the browser's same-origin
// credential behavior.
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base:    base,
		httpc:   &http.Client{Jar: jar},
		breaker: gobreaker.NewCircuitBreaker[roundTrip](gobreaker.Settings{Name: "storefront-api"}),
	}, nil
}

// URL resolves a backend path (plus optional query) against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one backend call. in (when non-nil) is sent as the JSON
// body; out (when non-nil) receives the decoded response body.
// POST: on non-2xx, returns *Error with the server's message field
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	rt, err := c.breaker.Execute(func() (roundTrip, error) {
		res, err := c.httpc.Do(req)
		if err != nil {
			return roundTrip{}, err
		}
		defer res.Body.Close()
		payload, err := io.ReadAll(res.Body)
		if err != nil {
			return roundTrip{}, err
		}
		return roundTrip{status: res.StatusCode, body: payload}, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if rt.status < 200 || rt.status >= 300 {
		return &Error{Status: rt.status, Message: errorMessage(rt.body)}
	}
	if out != nil && len(rt.body) > 0 {
		if err := json.Unmarshal(rt.body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// get performs a GET call.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post performs a POST call.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

// errorMessage extracts the "error" field from a response body, tolerating
// malformed bodies.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
