package stores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"storelocator/platform/config"
	"storelocator/platform/logger"
)

const maxPayloadBytes = 16 << 20

// FetchError is a failed load: network failure, non-success status or a
// malformed payload. Reason is what the list panel shows.
type FetchError struct {
	Reason string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	return e.Reason
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher returns the raw directory payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Source() string
}

// Client is the HTTP client for the remote store directory.
type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// NewClient creates a directory client.
func NewClient(cfg config.StoreAPIConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetStoreAPITimeout()},
		url:        cfg.GetStoreAPIURL(),
		log:        log,
	}
}

// Source identifies the upstream, also used as the cache key.
func (c *Client) Source() string {
	return c.url
}

// Fetch performs the single GET against the directory.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Reason: fmt.Sprintf("invalid request: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "StoreLocator/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).Error("store directory request failed", "error", err)
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "request timed out"
		}
		return nil, &FetchError{Reason: reason, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithContext(ctx).Error("store directory upstream error", "status", resp.StatusCode)
		return nil, &FetchError{Reason: fmt.Sprintf("HTTP %d", resp.StatusCode), Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		c.log.WithContext(ctx).Error("failed to read store directory payload", "error", err)
		return nil, &FetchError{Reason: err.Error(), Err: err}
	}
	return body, nil
}

var _ Fetcher = (*Client)(nil)
