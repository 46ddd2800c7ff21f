package structuring

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	structuringTemperature = 0.05
	structuringTimeout     = 120 * time.Second
)

// Structurer turns free lab report text into a field-keyed mapping
type Structurer struct {
	llm           LLMConnector
	catalog       *catalog.Catalog
	maxTextLength int
}

// NewStructurer creates a structuring use case
func NewStructurer(llm LLMConnector, cat *catalog.Catalog, maxTextLength int) *Structurer {
	return &Structurer{
		llm:           llm,
		catalog:       cat,
		maxTextLength: maxTextLength,
	}
}

// Structure asks the completion API to extract catalog fields from text.
// Any failure wraps entity.ErrStructuringFailed; an empty object is a valid result.
func (s *Structurer) Structure(ctx context.Context, text string) (entity.AnalysisValues, error) {
	input, truncated := truncate(text, s.maxTextLength)
	if truncated {
		ctxzap.Warn(ctx, "analysis text truncated",
			zap.Int("length", utf8.RuneCountInString(text)),
			zap.Int("limit", s.maxTextLength),
		)
	}

	messages := []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: systemPrompt},
		{Role: entity.RoleUser, Content: buildUserPrompt(s.catalog, input)},
	}

	resp, err := s.llm.Complete(ctx, messages, entity.CompletionOptions{
		Temperature: structuringTemperature,
		Timeout:     structuringTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: completion: %v", entity.ErrStructuringFailed, err)
	}

	values, err := parseValues(resp)
	if err != nil {
		ctxzap.Warn(ctx, "completion is not a JSON object",
			zap.Error(err),
			zap.Int("response_length", len(resp)),
		)
		return nil, fmt.Errorf("%w: %v", entity.ErrStructuringFailed, err)
	}

	ctxzap.Info(ctx, "analysis text structured", zap.Int("field_count", len(values)))
	return values, nil
}
