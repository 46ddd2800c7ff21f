package structuring

import (
	"context"

	"github.com/futig/lab-assistant/internal/entity"
)

type LLMConnector interface {
	Complete(ctx context.Context, messages []entity.ChatMessage, opts entity.CompletionOptions) (string, error)
}
