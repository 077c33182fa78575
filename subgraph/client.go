// Package subgraph is a client for the indexed query service that mirrors
// the canvas contracts. The indexer exposes a single GraphQL endpoint with
// a fixed set of queries; all numeric fields arrive as decimal strings and
// must be parsed as exact integers.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Request is a GraphQL request payload.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// Error is a single GraphQL error.
type Error struct {
	Message string `json:"message"`
}

func (e Error) Error() string { return e.Message }

// Client posts queries to one subgraph endpoint.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the given endpoint URL.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query executes a GraphQL query and decodes the data field into out.
// Transport failures, non-200 responses and GraphQL-level errors all
// surface as a single error return; the caller renders an error state
// rather than crashing.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(Request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("subgraph: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("subgraph: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("subgraph: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subgraph: unexpected status %s", resp.Status)
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("subgraph: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("subgraph: query failed: %w", envelope.Errors[0])
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("subgraph: decode data: %w", err)
	}
	return nil
}
