package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/validation"
)

const (
	searchPath       = "search"
	maxResponseBytes = 8 << 20
)

// Client performs one query per call against the backend's /search endpoint.
// It holds no per-query state and is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

// NewClient builds a client from the backend section of cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	normalized, err := validation.NewBackendURLValidator().ValidateAndNormalize(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("backend base url: %w", err)
	}
	base, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("backend base url: %w", err)
	}

	return &Client{
		baseURL: base,
		client: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
		userAgent: cfg.Backend.UserAgent,
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Search sends query to the backend and returns the results in rank order.
// An absent or empty result list yields an empty, non-nil slice. Every
// failure is returned as a *TransportError; nothing is retried.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := c.endpoint(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: OpRequest, Query: query, Err: err}
	}

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := debuglog.WithFields(map[string]interface{}{"request_id": requestID})
	start := time.Now()
	log.Debugf("GET %s", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: OpRequest, Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &TransportError{Op: OpStatus, Query: query, StatusCode: resp.StatusCode}
	}

	var payload Response
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := dec.Decode(&payload); err != nil {
		return nil, &TransportError{Op: OpDecode, Query: query, StatusCode: resp.StatusCode, Err: err}
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after response object")
		}
		return nil, &TransportError{Op: OpDecode, Query: query, StatusCode: resp.StatusCode, Err: err}
	}

	results := payload.Results
	if results == nil {
		results = []Result{}
	}
	log.Debugf("%d results in %s (backend count %d)", len(results), time.Since(start).Round(time.Millisecond), payload.Count)

	return results, nil
}

func (c *Client) endpoint(query string) string {
	u := c.baseURL.JoinPath(searchPath)
	u.RawQuery = url.Values{"q": []string{query}}.Encode()
	return u.String()
}
