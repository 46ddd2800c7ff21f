package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   zapcore.Level
		userMsg string
	}{
		{"missing profile", fmt.Errorf("load: %w", entity.ErrProfileNotFound), zapcore.WarnLevel, render.ErrProfileNotFound},
		{"lost session", entity.ErrSessionNotFound, zapcore.WarnLevel, render.ErrInvalidState},
		{"no model", fmt.Errorf("resolve: %w", entity.ErrModelUnavailable), zapcore.ErrorLevel, render.ErrServiceUnavailable},
		{"deadline", context.DeadlineExceeded, zapcore.ErrorLevel, render.ErrTimeout},
		{"network timeout", fmt.Errorf("send: %w", timeoutErr{}), zapcore.ErrorLevel, render.ErrTimeout},
		{"anything else", errors.New("boom"), zapcore.ErrorLevel, render.ErrGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classifyFailure(tt.err)
			assert.Equal(t, tt.level, f.level)
			assert.Equal(t, tt.userMsg, f.userMsg)
			assert.NotEmpty(t, f.logMsg)
		})
	}
}
