package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/integration/common"
	pkghttp "github.com/futig/lab-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	modelsEndpoint = "/models"
	modelCacheKey  = "model"
)

// Connector talks to an OpenAI-compatible completion API
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	client    *openai.Client
	models    *gocache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	base := common.NewBaseConnector(cfg.HTTPClientConfig, logger)

	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = strings.TrimRight(cfg.Url, "/")
	clientCfg.HTTPClient = base.HTTPClient()

	return &Connector{
		config:    cfg,
		connector: base,
		client:    openai.NewClientWithConfig(clientCfg),
		models:    gocache.New(cfg.ModelCacheTTL, 2*cfg.ModelCacheTTL),
		logger:    logger,
	}
}

// Complete sends the messages and returns the first choice content
func (c *Connector) Complete(ctx context.Context, messages []entity.ChatMessage, opts entity.CompletionOptions) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	ctxzap.Info(ctx, "requesting completion",
		zap.String("model", model),
		zap.Int("message_count", len(messages)),
		zap.Float32("temperature", opts.Temperature),
	)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: opts.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			// the cached model disappeared from the provider
			c.models.Delete(modelCacheKey)
		}
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices: %w", model, entity.ErrEmptyCompletion)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("model %s returned empty content: %w", model, entity.ErrEmptyCompletion)
	}

	ctxzap.Info(ctx, "completion received",
		zap.Int("result_length", len(content)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return content, nil
}

// resolveModel returns the configured model or discovers one through the listing endpoint
func (c *Connector) resolveModel(ctx context.Context) (string, error) {
	if c.config.Model != "" {
		return c.config.Model, nil
	}

	if cached, ok := c.models.Get(modelCacheKey); ok {
		return cached.(string), nil
	}

	var resp entity.LLMModelsResponse
	err := retry.Do(func() error {
		return c.connector.GetJSON(ctx, modelsEndpoint, &resp)
	}, c.config.Retry.ToRetryOptions(ctx)...)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}

	model, ok := SelectModel(resp.Data, c.config.ModelFilter)
	if !ok {
		ctxzap.Warn(ctx, "no model matches filter",
			zap.String("filter", c.config.ModelFilter),
			zap.Int("available", len(resp.Data)),
		)
		return "", fmt.Errorf("filter %q: %w", c.config.ModelFilter, entity.ErrModelUnavailable)
	}

	c.models.SetDefault(modelCacheKey, model)
	ctxzap.Info(ctx, "model resolved", zap.String("model", model))

	return model, nil
}

// SelectModel returns the first model whose id contains filter, case-insensitively
func SelectModel(models []entity.LLMModel, filter string) (string, bool) {
	filter = strings.ToLower(filter)
	for _, m := range models {
		if m.ID == "" {
			continue
		}
		if strings.Contains(strings.ToLower(m.ID), filter) {
			return m.ID, true
		}
	}
	return "", false
}

func toOpenAIMessages(messages []entity.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		switch role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
		default:
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
