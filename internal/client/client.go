// Package client talks to the PeerConnect REST API on behalf of a browser session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/pkg/config"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

type tokenKey struct{}

// WithToken returns a context carrying the session's bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom extracts the bearer credential from ctx.
func TokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// Observer records upstream call timings.
type Observer interface {
	ObserveUpstream(endpoint string, status int, duration time.Duration)
}

// APIError describes a non-success upstream response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Client wraps HTTP access to the REST API. It injects the bearer credential
// and normalises 401 responses into appErrors.ErrSessionExpired.
type Client struct {
	baseURL    string
	http       *http.Client
	noRedirect *http.Client
	observer   Observer
	logger     *zap.Logger
}

// New constructs a Client from upstream configuration.
func New(cfg config.UpstreamConfig, observer Observer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	// Downloads are streamed to the browser after the headers arrive, so only
	// the wait for the headers is bounded; a Client.Timeout would cut the body.
	downloads := http.DefaultTransport.(*http.Transport).Clone()
	downloads.ResponseHeaderTimeout = timeout
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		noRedirect: &http.Client{
			Transport: downloads,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		observer: observer,
		logger:   logger,
	}
}

// BaseURL returns the configured API base without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs an authenticated JSON request and decodes the body into out.
func (c *Client) Do(ctx context.Context, endpoint, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.http, req, endpoint, out)
}

// postPublic sends an unauthenticated JSON request and decodes the body
// whatever the status. Auth endpoints report failures in the body.
func (c *Client) postPublic(ctx context.Context, endpoint, path string, payload, out interface{}) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		return 0, transportError(err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, time.Since(start))

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request, endpoint string, out interface{}) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Debug("upstream call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from server")
	}
	return nil
}

// checkStatus maps non-success responses to typed errors. It reads the body
// only on failure.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return appErrors.Wrap(&APIError{Status: resp.StatusCode}, appErrors.ErrSessionExpired.Code, http.StatusUnauthorized, appErrors.ErrSessionExpired.Message)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	message := apiErr.Message
	if message == "" {
		message = fmt.Sprintf("API error %d", resp.StatusCode)
	}
	return appErrors.Wrap(apiErr, appErrors.ErrUpstream.Code, resp.StatusCode, message)
}

func readMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(endpoint, status, d)
	}
}

// UpstreamStatus returns the upstream HTTP status carried by err, or 0.
func UpstreamStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
