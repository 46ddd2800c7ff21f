package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/lab-assistant/internal/api"
	"github.com/futig/lab-assistant/internal/api/form"
	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/config"
	"github.com/futig/lab-assistant/internal/integration/common"
	"github.com/futig/lab-assistant/internal/integration/llm"
	"github.com/futig/lab-assistant/internal/integration/pdf"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/futig/lab-assistant/internal/pkg/validator"
	"github.com/futig/lab-assistant/internal/repository"
	"github.com/futig/lab-assistant/internal/telegram"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/futig/lab-assistant/internal/usecase/report"
	"github.com/futig/lab-assistant/internal/usecase/structuring"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LLMConnector is the completion client shared by the use cases
type LLMConnector interface {
	structuring.LLMConnector
	report.LLMConnector
}

// Build wires the bot and the form server from the environment configuration
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("data_dir", cfg.StorageCfg.DataDir),
		zap.String("form_addr", cfg.FormCfg.ServerAddr),
	)

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramCfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot api: %w", err)
	}
	logger.Info("Telegram API authorized", zap.String("bot", botAPI.Self.UserName))

	// Storage
	profiles := repository.NewFileStore(cfg.StorageCfg.DataDir)
	sessions := repository.NewSessionCache(cfg.StorageCfg.SessionTTL)
	tokens := repository.NewFormTokenStore(cfg.FormCfg.TokenTTL)
	reports := repository.NewReportCache(cfg.StorageCfg.ReportTTL)
	logger.Info("Repositories initialized")

	var llmConnector LLMConnector
	if cfg.EnableMocks {
		logger.Info("Using mock completion connector")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using completion API connector", zap.String("url", cfg.LLMConnectorCfg.Url))
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// Telegram file links are absolute and carry the bot token already
	downloadCfg := cfg.LLMConnectorCfg.HTTPClientConfig
	downloadCfg.Url = ""
	downloadCfg.Token = ""
	channel := handlers.NewMessageSender(
		botAPI,
		common.NewBaseConnector(downloadCfg, logger),
		&cfg.TelegramCfg.Retry,
		logger,
	)

	cat := catalog.Default()
	deps := &handlers.Deps{
		Channel:    channel,
		States:     state.NewManager(sessions),
		Keyboard:   keyboard.NewBuilder(),
		Profiles:   profiles,
		Structurer: structuring.NewStructurer(llmConnector, cat, cfg.IntakeCfg.MaxTextLength),
		Composer:   report.NewComposer(llmConnector, channel, reports, cat, cfg.TelegramCfg.ChunkDelay),
		Extractor:  pdf.NewExtractor(cfg.IntakeCfg.PDFWorkers, logger),
		Validator:  validator.NewValidator(cfg.IntakeCfg),
		Catalog:    cat,
		Reports:    reports,
		Formatters: formatter.NewFactory(),
		FormLinks:  form.NewLinker(tokens, cfg.FormCfg.PublicURL),
		Consultant: report.NewConsultant(llmConnector),
	}
	logger.Info("Use cases initialized")

	bot := telegram.NewBot(botAPI, &cfg.TelegramCfg, deps, logger)

	var server *http.Server
	if cfg.FormCfg.PublicURL != "" {
		router := api.SetupRouter(form.NewHandler(tokens, bot, cat), logger)
		server = &http.Server{
			Addr:         cfg.FormCfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		logger.Info("Form server configured", zap.String("public_url", cfg.FormCfg.PublicURL))
	} else {
		logger.Info("FORM_PUBLIC_URL is empty, hosted form disabled")
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		bot:             bot,
		server:          server,
		shutdownTimeout: time.Duration(cfg.TelegramCfg.ShutdownTimeout) * time.Second,
		logger:          logger,
	}, nil
}
