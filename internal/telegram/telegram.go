package telegram

import (
	"context"

	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/telegram/bot"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
	SubmitForm(ctx context.Context, userID, chatID int64, payload []byte) error
}

// NewBot initializes the telegram bot with all handlers
func NewBot(api bot.UpdateSource, cfg *config.TelegramConfig, deps *handlers.Deps, logger *zap.Logger) Bot {
	dispatcher := bot.NewDispatcher(
		bot.DispatcherConfig{
			QueueSize:          cfg.QueueSize,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			RateLimitBurst:     cfg.RateLimitBurst,
		},
		deps.States,
		deps.Channel,
		handlers.NewCommandHandler(deps),
		handlers.NewFormHandler(deps),
		logger,
	)

	registerHandlers(dispatcher, deps, logger)

	logger.Info("telegram bot initialized successfully")

	return bot.New(api, cfg, dispatcher, logger)
}

// registerHandlers registers the state handlers of the intake state machine
func registerHandlers(d *bot.Dispatcher, deps *handlers.Deps, logger *zap.Logger) {
	stateHandlers := []handlers.Handler{
		handlers.NewNeutralHandler(deps),

		// Registration
		handlers.NewRegistrationStartHandler(deps),
		handlers.NewGenderHandler(deps),
		handlers.NewAgeHandler(deps),
		handlers.NewWeightHandler(deps),
		handlers.NewHeightHandler(deps),
		handlers.NewMedicalHistoryHandler(deps),
		handlers.NewHabitsHandler(deps),
		handlers.NewDietHandler(deps),
		handlers.NewSleepHandler(deps),

		// Analysis intake
		handlers.NewChooseMethodHandler(deps),
		handlers.NewWaitingForPDFHandler(deps),
		handlers.NewConfirmationHandler(deps),
		handlers.NewEditedTextHandler(deps),
	}

	for _, h := range stateHandlers {
		d.RegisterHandler(h)
	}

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", len(stateHandlers)),
	)
}
