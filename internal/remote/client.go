// Package remote fetches the user directory from its REST endpoint.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// DefaultURL is the public mock directory the application is seeded from.
const DefaultURL = "https://jsonplaceholder.typicode.com/users"

// MaxResponseSize bounds directory response body reads.
const MaxResponseSize int64 = 8 << 20

const userAgent = "userdesk/1.0"

// Directory retrieves the full remote user collection.
type Directory interface {
	FetchAll(ctx context.Context) ([]model.User, error)
}

// Client is a Directory backed by a single HTTP GET.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for url. An empty url selects DefaultURL.
func NewClient(url string, logger *log.Logger, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client fetches from.
func (c *Client) URL() string {
	return c.url
}

// FetchAll performs one GET and decodes the body as a JSON array of users.
// Transport errors, non-2xx statuses and malformed bodies are returned as
// errors. There is no retry.
func (c *Client) FetchAll(ctx context.Context) ([]model.User, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directory returned %s: %s", resp.Status, errorBody(resp.Body))
	}

	var users []model.User
	if err := decodeResponse(resp.Body, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	if users == nil {
		return nil, fmt.Errorf("failed to decode users: response is not an array")
	}

	c.logger.Debug(ctx, "Fetched users", log.Fields{
		"url":        c.url,
		"request_id": requestID,
		"count":      len(users),
		"elapsed":    time.Since(start).String(),
	})
	return users, nil
}

// decodeResponse reads at most MaxResponseSize bytes and JSON-decodes them into v.
func decodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// errorBody returns a bounded prefix of an error response for diagnostics.
func errorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 512))
	return string(data)
}
