package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// errorBodyLimit bounds how much of a failed response ends up in HTTPError
const errorBodyLimit = 1024

// Connector is a preconfigured HTTP client bound to one upstream service
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...ClientOption) *Connector {
	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: buildClient(options...),
		logger:     config.Logger,
	}
}

// HTTPClient exposes the configured client for SDKs that bring their own request layer
func (c *Connector) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the service root the connector was built for
func (c *Connector) BaseURL() string {
	return c.baseURL
}

// GetJSON fetches baseURL+path and decodes the JSON body into out
func (c *Connector) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Download fetches a raw resource by absolute URL and fails once more than
// maxSize bytes arrive.
func (c *Connector) Download(ctx context.Context, url string, maxSize int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if maxSize <= 0 {
		return readBody(resp.Body)
	}
	if resp.ContentLength > maxSize {
		return nil, &SizeLimitError{Limit: maxSize, Size: resp.ContentLength}
	}

	data, err := readBody(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, &SizeLimitError{Limit: maxSize, Size: int64(len(data))}
	}
	return data, nil
}

// do executes the request and turns transport failures and non-2xx statuses
// into typed errors; on success the caller owns the body
func (c *Connector) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}

func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the upstream may succeed on a later attempt
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SizeLimitError is returned when a download exceeds its size limit
type SizeLimitError struct {
	Limit int64
	Size  int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("response too large: %d bytes (max %d)", e.Size, e.Limit)
}
