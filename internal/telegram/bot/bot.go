package bot

import (
	"context"
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// UpdateSource is the long polling side of *tgbotapi.BotAPI
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api        UpdateSource
	cfg        *config.TelegramConfig
	dispatcher *Dispatcher
	logger     *zap.Logger
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new Telegram bot
func New(api UpdateSource, cfg *config.TelegramConfig, dispatcher *Dispatcher, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	b.dispatcher.Start(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processUpdates(ctx, updates)
	}()

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops receiving updates and waits for queued events with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})
	b.wg.Wait()

	if err := b.dispatcher.Stop(time.Duration(b.cfg.ShutdownTimeout) * time.Second); err != nil {
		return err
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// SubmitForm hands a hosted form submission to the user's queue
func (b *Bot) SubmitForm(ctx context.Context, userID, chatID int64, payload []byte) error {
	return b.dispatcher.SubmitForm(ctx, userID, chatID, payload)
}

// processUpdates normalizes updates and hands them to the dispatcher
func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ok := handlers.NewEvent(update)
			if !ok {
				ctxzap.Debug(ctx, "update ignored", zap.Int("update_id", update.UpdateID))
				continue
			}
			_ = b.dispatcher.Dispatch(ctx, ev)
		}
	}
}
