package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// failure is how an unhandled handler error is logged and shown
type failure struct {
	level   zapcore.Level
	logMsg  string
	userMsg string
}

type failureRule struct {
	match func(error) bool
	failure
}

func is(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

func isNetwork(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// failureRules are checked in order; the first match wins
var failureRules = []failureRule{
	{is(entity.ErrProfileNotFound, entity.ErrInvalidProfile),
		failure{zapcore.WarnLevel, "profile not found", render.ErrProfileNotFound}},
	{is(entity.ErrInvalidState, entity.ErrSessionNotFound),
		failure{zapcore.WarnLevel, "invalid session state", render.ErrInvalidState}},
	{is(entity.ErrModelUnavailable),
		failure{zapcore.ErrorLevel, "completion model unavailable", ""}},
	{is(context.DeadlineExceeded, context.Canceled),
		failure{zapcore.ErrorLevel, "operation timed out", ""}},
	{isNetwork,
		failure{zapcore.ErrorLevel, "network error", ""}},
}

// classifyFailure picks the log level and user text for err. Rules without a
// user text defer to render.ClassifyError.
func classifyFailure(err error) failure {
	f := failure{level: zapcore.ErrorLevel, logMsg: "handler error"}
	for _, rule := range failureRules {
		if rule.match(err) {
			f = rule.failure
			break
		}
	}
	if f.userMsg == "" {
		f.userMsg = render.ClassifyError(err)
	}
	return f
}

// HandleError logs err at the level of its class and tells the user what went wrong
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	f := classifyFailure(err)
	if ce := ctxzap.Extract(ctx).Check(f.level, f.logMsg); ce != nil {
		ce.Write(zap.Error(err), zap.Int64("chat_id", chatID))
	}

	h.sendMessage(ctx, chatID, f.userMsg, nil)
}
