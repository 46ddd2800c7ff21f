package report

import (
	"context"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
)

type LLMConnector interface {
	Complete(ctx context.Context, messages []entity.ChatMessage, opts entity.CompletionOptions) (string, error)
}

// Sender delivers messages to a chat and returns the sent message id
type Sender interface {
	Send(ctx context.Context, msg entity.OutgoingMessage) (int, error)
}

// ReportStore keeps the last report of a user for downloads
type ReportStore interface {
	Put(userID int64, report formatter.Report)
}
