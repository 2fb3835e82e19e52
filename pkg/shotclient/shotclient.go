// Package shotclient provides a client for a running shot feed server.
package shotclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/models"
)

// apiError mirrors the server's JSON error body
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("feed server returned status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("feed server returned status %d", e.StatusCode)
}

// Client defines the operations a feed consumer needs
type Client interface {
	// FetchShots retrieves the server's default recent window, oldest first
	FetchShots(ctx context.Context) ([]feed.ShotRecord, error)
	// FetchRecent retrieves up to limit recent shots, oldest first
	FetchRecent(ctx context.Context, limit int) ([]feed.ShotRecord, error)
	// Stats retrieves classification totals
	Stats(ctx context.Context) (*models.ShotStats, error)
	// RecordShot posts a shot for the server to classify and broadcast
	RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error)
	// BaseURL returns the configured server base URL
	BaseURL() string
}

var _ Client = (*HTTPClient)(nil)
var _ feed.Source = (*HTTPClient)(nil)

// HTTPClient talks to the feed server over HTTP
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a client for the server at baseURL
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: 10 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured server base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// do executes a request and decodes a 2xx JSON body into response.
// Error bodies are decoded into a StatusError when possible.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, response interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	c.log.Debug("Feed request", "method", method, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to feed server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Feed response", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errBody apiError
		if json.Unmarshal(data, &errBody) == nil {
			statusErr.Code = errBody.Code
			statusErr.Message = errBody.Message
		}
		return statusErr
	}

	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchShots retrieves the server's default recent window
func (c *HTTPClient) FetchShots(ctx context.Context) ([]feed.ShotRecord, error) {
	return c.FetchRecent(ctx, 0)
}

// FetchRecent retrieves up to limit shots. A zero limit lets the server pick.
func (c *HTTPClient) FetchRecent(ctx context.Context, limit int) ([]feed.ShotRecord, error) {
	path := "/shots"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var batch feed.Batch
	if err := c.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
		return nil, err
	}
	if batch.Shots == nil {
		batch.Shots = []feed.ShotRecord{}
	}
	return batch.Shots, nil
}

// Stats retrieves classification totals
func (c *HTTPClient) Stats(ctx context.Context) (*models.ShotStats, error) {
	var stats models.ShotStats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecordShot posts a shot to the server
func (c *HTTPClient) RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error) {
	var shot models.Shot
	if err := c.do(ctx, http.MethodPost, "/api/shots", in, &shot); err != nil {
		return nil, err
	}
	return &shot, nil
}
