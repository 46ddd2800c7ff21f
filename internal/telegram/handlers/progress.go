package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const progressInterval = 30 * time.Second

var progressMessages = []string{
	"⏳ Всё ещё готовлю заключение...",
	"⏳ Это займёт ещё немного времени...",
	"⏳ Анализирую показатели...",
	"⏳ Почти готово...",
}

// ProgressNotifier sends periodic progress messages and typing indicators during long operations
type ProgressNotifier struct {
	channel  Channel
	chatID   int64
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	index    int
	started  bool
}

// NewProgressNotifier creates a new progress notifier
func NewProgressNotifier(channel Channel, chatID int64) *ProgressNotifier {
	return &ProgressNotifier{
		channel:  channel,
		chatID:   chatID,
		interval: progressInterval,
		done:     make(chan struct{}),
	}
}

// Start begins sending periodic progress messages and typing indicators
func (pn *ProgressNotifier) Start(ctx context.Context) {
	if pn.started {
		return
	}
	pn.started = true

	pn.sendTyping(ctx)

	pn.wg.Add(1)
	go func() {
		defer pn.wg.Done()

		progressTicker := time.NewTicker(pn.interval)
		defer progressTicker.Stop()
		typingTicker := time.NewTicker(typingInterval)
		defer typingTicker.Stop()

		for {
			select {
			case <-progressTicker.C:
				pn.sendProgress(ctx)
			case <-typingTicker.C:
				pn.sendTyping(ctx)
			case <-pn.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the notifier and waits for its goroutine
func (pn *ProgressNotifier) Stop() {
	if !pn.started {
		return
	}
	pn.started = false

	close(pn.done)
	pn.wg.Wait()
}

func (pn *ProgressNotifier) sendProgress(ctx context.Context) {
	text := progressMessages[pn.index%len(progressMessages)]
	pn.index++

	if _, err := pn.channel.Send(ctx, entity.OutgoingMessage{ChatID: pn.chatID, Text: text}); err != nil {
		ctxzap.Warn(ctx, "failed to send progress message", zap.Error(err))
	}
}

func (pn *ProgressNotifier) sendTyping(ctx context.Context) {
	if err := pn.channel.SendTyping(ctx, pn.chatID); err != nil {
		ctxzap.Warn(ctx, "failed to send typing action", zap.Error(err))
	}
}
