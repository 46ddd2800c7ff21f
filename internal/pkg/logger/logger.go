package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction tags the context logger with the flow being executed
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithUser tags the context logger with the Telegram user and chat the work belongs to
func WithUser(ctx context.Context, userID, chatID int64) context.Context {
	return AddFields(ctx,
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	)
}
