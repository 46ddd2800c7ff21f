package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// typingInterval keeps the indicator alive; Telegram drops it after 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier sends periodic "typing" actions to show bot activity
type TypingNotifier struct {
	channel Channel
	chatID  int64
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// NewTypingNotifier creates a new typing indicator
func NewTypingNotifier(channel Channel, chatID int64) *TypingNotifier {
	return &TypingNotifier{
		channel: channel,
		chatID:  chatID,
		done:    make(chan struct{}),
	}
}

// Start sends the first typing action and keeps repeating it until Stop
func (t *TypingNotifier) Start(ctx context.Context) {
	if t.started {
		return
	}
	t.started = true

	t.send(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send(ctx)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops sending typing indicators and waits for the sender goroutine
func (t *TypingNotifier) Stop() {
	if !t.started {
		return
	}
	t.started = false

	close(t.done)
	t.wg.Wait()
}

func (t *TypingNotifier) send(ctx context.Context) {
	if err := t.channel.SendTyping(ctx, t.chatID); err != nil {
		ctxzap.Warn(ctx, "failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
