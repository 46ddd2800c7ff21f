package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/futig/lab-assistant/internal/entity"
	pkgRetry "github.com/futig/lab-assistant/internal/pkg/retry"
	pkghttp "github.com/futig/lab-assistant/pkg/http"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// BotAPI is the subset of *tgbotapi.BotAPI the sender needs
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// FileDownloader fetches a file by absolute URL with a size cap
type FileDownloader interface {
	Download(ctx context.Context, url string, maxSize int64) ([]byte, error)
}

// MessageSender implements Channel on top of the Telegram Bot API
type MessageSender struct {
	bot      BotAPI
	files    FileDownloader
	retryCfg *pkgRetry.RetryConfig
	logger   *zap.Logger
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI, files FileDownloader, retryCfg *pkgRetry.RetryConfig, logger *zap.Logger) *MessageSender {
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}
	return &MessageSender{
		bot:      bot,
		files:    files,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// Send sends a message to the chat. A message Telegram cannot parse in the
// requested mode is resent as plain text.
func (s *MessageSender) Send(ctx context.Context, msg entity.OutgoingMessage) (int, error) {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	out.ParseMode = msg.ParseMode
	if msg.Markup != nil {
		out.ReplyMarkup = msg.Markup
	}

	sent, err := s.send(ctx, out)
	if err != nil && out.ParseMode != "" && isParseEntitiesError(err) {
		ctxzap.Warn(ctx, "message markup rejected, resending as plain text",
			zap.String("parse_mode", out.ParseMode),
			zap.Error(err),
		)
		out.ParseMode = ""
		sent, err = s.send(ctx, out)
	}
	if err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
		return 0, fmt.Errorf("send message: %w", err)
	}

	return sent.MessageID, nil
}

// Edit replaces the message text; an unchanged message is not an error
func (s *MessageSender) Edit(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	cfg.ReplyMarkup = markup

	err := s.request(ctx, cfg)
	if err != nil && !isNotModified(err) {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete removes a message
func (s *MessageSender) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := s.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendDocument uploads data as a named file
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := s.send(ctx, doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query
func (s *MessageSender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SendTyping shows the typing indicator once; it expires after about 5s
func (s *MessageSender) SendTyping(ctx context.Context, chatID int64) error {
	if _, err := s.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		return fmt.Errorf("send chat action: %w", err)
	}
	return nil
}

// DownloadFile resolves the file link and downloads at most maxSize bytes.
// Oversized files are not retried.
func (s *MessageSender) DownloadFile(ctx context.Context, fileID string, maxSize int64) ([]byte, error) {
	var url string
	err := retry.Do(func() error {
		var err error
		url, err = s.bot.GetFileDirectURL(fileID)
		return err
	}, s.options(ctx, "get file link")...)
	if err != nil {
		return nil, fmt.Errorf("get file link: %w", err)
	}

	var data []byte
	opts := append(s.options(ctx, "download file"), retry.RetryIf(func(err error) bool {
		var sizeErr *pkghttp.SizeLimitError
		return !errors.As(err, &sizeErr) && isRetryable(err)
	}))
	err = retry.Do(func() error {
		var err error
		data, err = s.files.Download(ctx, url, maxSize)
		return err
	}, opts...)
	if err != nil {
		var sizeErr *pkghttp.SizeLimitError
		if errors.As(err, &sizeErr) {
			return nil, fmt.Errorf("%w: %v", entity.ErrFileTooLarge, err)
		}
		return nil, fmt.Errorf("download file: %w", err)
	}

	ctxzap.Debug(ctx, "file downloaded",
		zap.String("file_id", fileID),
		zap.Int("size", len(data)),
	)
	return data, nil
}

func (s *MessageSender) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var sent tgbotapi.Message
	err := retry.Do(func() error {
		m, err := s.bot.Send(c)
		if err != nil {
			return err
		}
		sent = m
		return nil
	}, s.options(ctx, "send")...)
	return sent, err
}

func (s *MessageSender) request(ctx context.Context, c tgbotapi.Chattable) error {
	return retry.Do(func() error {
		_, err := s.bot.Request(c)
		return err
	}, s.options(ctx, "request")...)
}

func (s *MessageSender) options(ctx context.Context, op string) []retry.Option {
	return append(s.retryCfg.ToRetryOptions(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "telegram call failed, retrying",
				zap.String("op", op),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}
