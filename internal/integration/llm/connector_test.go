package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, models string, content string, listCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			atomic.AddInt32(listCalls, 1)
			_, _ = w.Write([]byte(models))
		case "/chat/completions":
			var req struct {
				Model string `json:"model"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "1",
				"object": "chat.completion",
				"model":  req.Model,
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(url string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Token:                 "token",
			Url:                   url,
		},
		ModelFilter:   "qwen",
		ModelCacheTTL: time.Hour,
	}
}

func TestCompleteResolvesAndCachesModel(t *testing.T) {
	var listCalls int32
	srv := newTestServer(t, `{"data":[{"id":"llama-3"},{"id":"Qwen/Qwen3-235B"}]}`, "ответ", &listCalls)
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	msgs := []entity.ChatMessage{{Role: entity.RoleUser, Content: "привет"}}

	for i := 0; i < 2; i++ {
		got, err := c.Complete(context.Background(), msgs, entity.CompletionOptions{Temperature: 0.5, Timeout: time.Second})
		require.NoError(t, err)
		assert.Equal(t, "ответ", got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
}

func TestCompleteNoMatchingModel(t *testing.T) {
	var listCalls int32
	srv := newTestServer(t, `{"data":[{"id":"llama-3"}]}`, "ответ", &listCalls)
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	_, err := c.Complete(context.Background(), nil, entity.CompletionOptions{})
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestCompleteEmptyContent(t *testing.T) {
	var listCalls int32
	srv := newTestServer(t, `{"data":[]}`, "   ", &listCalls)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Model = "fixed-model"
	c := NewConnector(cfg, zap.NewNop())

	_, err := c.Complete(context.Background(), nil, entity.CompletionOptions{})
	require.ErrorIs(t, err, entity.ErrEmptyCompletion)
	assert.Equal(t, int32(0), atomic.LoadInt32(&listCalls))
}

func TestSelectModel(t *testing.T) {
	models := []entity.LLMModel{{ID: ""}, {ID: "deepseek"}, {ID: "QWEN-small"}, {ID: "qwen-large"}}

	got, ok := SelectModel(models, "qwen")
	require.True(t, ok)
	assert.Equal(t, "QWEN-small", got)

	_, ok = SelectModel(models, "mistral")
	assert.False(t, ok)
}

func TestMockConnector(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	got, err := m.Complete(context.Background(), []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: "Верни только JSON"},
	}, entity.CompletionOptions{})
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(got)))
}
