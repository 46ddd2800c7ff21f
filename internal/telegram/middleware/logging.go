package middleware

import (
	"context"
	"time"

	"github.com/futig/lab-assistant/internal/pkg/logger"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Next continues the middleware chain
type Next func(ctx context.Context, ev *handlers.Event)

// LoggingMiddleware tags the context logger with event fields and logs all incoming events
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Handle logs the event
func (m *LoggingMiddleware) Handle(ctx context.Context, ev *handlers.Event, next Next) {
	start := time.Now()

	ctx = logger.WithUser(ctx, ev.UserID, ev.ChatID)
	ctx = logger.AddFields(ctx,
		zap.String("trace_id", uuid.NewString()),
		zap.Stringer("event", ev.Kind),
	)

	fields := []zap.Field{zap.Int("message_id", ev.MessageID)}
	if ev.IsCommand() {
		fields = append(fields, zap.String("command", ev.Command))
	}
	if ev.Kind == handlers.EventCallback {
		fields = append(fields, zap.String("callback_data", ev.CallbackData))
	}
	ctxzap.Info(ctx, "telegram event received", fields...)

	next(ctx, ev)

	ctxzap.Info(ctx, "telegram event processed",
		zap.Duration("duration", time.Since(start)),
	)
}
