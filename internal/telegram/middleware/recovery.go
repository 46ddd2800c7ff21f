package middleware

import (
	"context"
	"runtime/debug"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	channel handlers.Channel
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(channel handlers.Channel) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		channel: channel,
	}
}

// Handle recovers from panics and tells the user something went wrong
func (m *RecoveryMiddleware) Handle(ctx context.Context, ev *handlers.Event, next Next) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		ctxzap.Error(ctx, "panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
		)

		if ev.ChatID == 0 {
			return
		}
		msg := entity.OutgoingMessage{ChatID: ev.ChatID, Text: render.ErrGeneric}
		if _, err := m.channel.Send(ctx, msg); err != nil {
			ctxzap.Error(ctx, "failed to send error message", zap.Error(err))
		}
	}()

	next(ctx, ev)
}
