package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Channel is the messaging surface handlers talk to
type Channel interface {
	// Send delivers a message and returns its id
	Send(ctx context.Context, msg entity.OutgoingMessage) (int, error)

	// Edit replaces the text (and inline keyboard) of a sent message
	Edit(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error

	// Delete removes a sent message
	Delete(ctx context.Context, chatID int64, messageID int) error

	// SendDocument uploads a file to the chat
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error

	// AnswerCallback acknowledges a button press
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// SendTyping shows the typing indicator
	SendTyping(ctx context.Context, chatID int64) error

	// DownloadFile fetches an attached file, failing above maxSize bytes
	DownloadFile(ctx context.Context, fileID string, maxSize int64) ([]byte, error)
}

// Telegram error descriptions that mean the target message no longer exists
var messageGoneMarkers = []string{
	"message to delete not found",
	"message to edit not found",
	"MESSAGE_ID_INVALID",
}

// isMessageGone reports whether err says the message is already gone.
// These are the only deletion failures handlers ignore silently.
func isMessageGone(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
		return false
	}
	for _, marker := range messageGoneMarkers {
		if strings.Contains(apiErr.Message, marker) {
			return true
		}
	}
	return false
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}

func isParseEntitiesError(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) &&
		apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "can't parse entities")
}

// isRetryable keeps retries to transport failures, flood waits and server errors
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
