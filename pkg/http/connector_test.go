package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(baseURL string) *Connector {
	return NewConnector(
		&ConnectorConfig{BaseURL: baseURL, Logger: zap.NewNop()},
		WithRequestLogging(),
		WithAuthToken("secret"),
	)
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"m1"}]}`))
	}))
	defer srv.Close()

	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := newTestConnector(srv.URL).GetJSON(context.Background(), "/models", &resp)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "m1", resp.Data[0].ID)
}

func TestGetJSONHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestConnector(srv.URL).GetJSON(context.Background(), "/x", nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "boom", httpErr.Message)
	assert.True(t, httpErr.Temporary())
}

func TestDownload(t *testing.T) {
	body := strings.Repeat("a", 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestConnector("")

	data, err := c.Download(context.Background(), srv.URL+"/file", 64)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	_, err = c.Download(context.Background(), srv.URL+"/file", 63)
	var sizeErr *SizeLimitError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, int64(63), sizeErr.Limit)
}

func TestRedactURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.telegram.org/file/bot123:ABC/documents/file_1.pdf?x=1", nil)
	assert.Equal(t, "https://api.telegram.org/file/bot***/documents/file_1.pdf", redactURL(req))
}

func TestDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lab-assistant", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewConnector(
		&ConnectorConfig{BaseURL: srv.URL + "/", Logger: zap.NewNop()},
		WithAuthToken(""),
		WithDefaultHeader("User-Agent", "lab-assistant"),
	)
	assert.Equal(t, srv.URL, c.BaseURL())
	require.NoError(t, c.GetJSON(context.Background(), "/ping", nil))
}
