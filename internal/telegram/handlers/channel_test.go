package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	pkgRetry "github.com/futig/lab-assistant/internal/pkg/retry"
	pkghttp "github.com/futig/lab-assistant/pkg/http"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	sendErrs []error
	sent     []tgbotapi.Chattable
	reqErr   error
	requests int
	linkErrs []error
	links    int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if len(b.sendErrs) > 0 {
		err := b.sendErrs[0]
		b.sendErrs = b.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{MessageID: 77}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requests++
	if b.reqErr != nil {
		return nil, b.reqErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	b.links++
	if len(b.linkErrs) > 0 {
		err := b.linkErrs[0]
		b.linkErrs = b.linkErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "https://files.example.org/" + fileID, nil
}

type fakeDownloader struct {
	data  []byte
	err   error
	calls int
	url   string
}

func (d *fakeDownloader) Download(_ context.Context, url string, _ int64) ([]byte, error) {
	d.calls++
	d.url = url
	return d.data, d.err
}

func fastRetry() *pkgRetry.RetryConfig {
	return &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
}

func apiError(code int, msg string) error {
	return &tgbotapi.Error{Code: code, Message: msg}
}

func TestIsMessageGone(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "delete not found", err: apiError(400, "Bad Request: message to delete not found"), want: true},
		{name: "edit not found", err: apiError(400, "Bad Request: message to edit not found"), want: true},
		{name: "invalid id", err: apiError(400, "Bad Request: MESSAGE_ID_INVALID"), want: true},
		{name: "wrapped", err: fmt.Errorf("delete message: %w", apiError(400, "message to delete not found")), want: true},
		{name: "other bad request", err: apiError(400, "Bad Request: message can't be deleted"), want: false},
		{name: "server error", err: apiError(500, "message to delete not found"), want: false},
		{name: "plain error", err: errors.New("message to delete not found"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isMessageGone(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errors.New("connection reset")))
	assert.True(t, isRetryable(apiError(http.StatusTooManyRequests, "Too Many Requests: retry after 1")))
	assert.True(t, isRetryable(apiError(http.StatusBadGateway, "Bad Gateway")))
	assert.False(t, isRetryable(apiError(http.StatusBadRequest, "Bad Request")))
	assert.False(t, isRetryable(fmt.Errorf("send: %w", context.Canceled)))
}

func TestMessageSenderSend(t *testing.T) {
	ctx := context.Background()

	t.Run("returns message id", func(t *testing.T) {
		bot := &fakeBot{}
		sender := NewMessageSender(bot, &fakeDownloader{}, fastRetry(), zap.NewNop())

		id, err := sender.Send(ctx, entity.OutgoingMessage{ChatID: 1, Text: "hi"})
		require.NoError(t, err)
		assert.Equal(t, 77, id)
	})

	t.Run("falls back to plain text", func(t *testing.T) {
		bot := &fakeBot{sendErrs: []error{apiError(400, "Bad Request: can't parse entities: unclosed tag")}}
		sender := NewMessageSender(bot, &fakeDownloader{}, fastRetry(), zap.NewNop())

		_, err := sender.Send(ctx, entity.OutgoingMessage{ChatID: 1, Text: "<b>oops", ParseMode: entity.ParseModeHTML})
		require.NoError(t, err)
		require.Len(t, bot.sent, 2)
		assert.Equal(t, entity.ParseModeHTML, bot.sent[0].(tgbotapi.MessageConfig).ParseMode)
		assert.Empty(t, bot.sent[1].(tgbotapi.MessageConfig).ParseMode)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		bot := &fakeBot{sendErrs: []error{errors.New("timeout"), apiError(502, "Bad Gateway")}}
		sender := NewMessageSender(bot, &fakeDownloader{}, fastRetry(), zap.NewNop())

		_, err := sender.Send(ctx, entity.OutgoingMessage{ChatID: 1, Text: "hi"})
		require.NoError(t, err)
		assert.Len(t, bot.sent, 3)
	})

	t.Run("does not retry bad requests", func(t *testing.T) {
		bot := &fakeBot{sendErrs: []error{apiError(400, "Bad Request: chat not found")}}
		sender := NewMessageSender(bot, &fakeDownloader{}, fastRetry(), zap.NewNop())

		_, err := sender.Send(ctx, entity.OutgoingMessage{ChatID: 1, Text: "hi"})
		require.Error(t, err)
		assert.Len(t, bot.sent, 1)
	})
}

func TestMessageSenderEditIgnoresNotModified(t *testing.T) {
	bot := &fakeBot{reqErr: apiError(400, "Bad Request: message is not modified")}
	sender := NewMessageSender(bot, &fakeDownloader{}, fastRetry(), zap.NewNop())

	require.NoError(t, sender.Edit(context.Background(), 1, 2, "same", nil))
	assert.Equal(t, 1, bot.requests)
}

func TestMessageSenderDownloadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("retries link lookup", func(t *testing.T) {
		bot := &fakeBot{linkErrs: []error{errors.New("connection reset")}}
		files := &fakeDownloader{data: []byte("%PDF")}
		sender := NewMessageSender(bot, files, fastRetry(), zap.NewNop())

		data, err := sender.DownloadFile(ctx, "abc", 1024)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF"), data)
		assert.Equal(t, 2, bot.links)
		assert.Equal(t, "https://files.example.org/abc", files.url)
	})

	t.Run("size limit is final", func(t *testing.T) {
		files := &fakeDownloader{err: &pkghttp.SizeLimitError{Limit: 10, Size: 20}}
		sender := NewMessageSender(&fakeBot{}, files, fastRetry(), zap.NewNop())

		_, err := sender.DownloadFile(ctx, "abc", 10)
		require.ErrorIs(t, err, entity.ErrFileTooLarge)
		assert.Equal(t, 1, files.calls)
	})

	t.Run("transport failure retried", func(t *testing.T) {
		files := &fakeDownloader{err: errors.New("connection reset")}
		sender := NewMessageSender(&fakeBot{}, files, fastRetry(), zap.NewNop())

		_, err := sender.DownloadFile(ctx, "abc", 10)
		require.Error(t, err)
		assert.Equal(t, 3, files.calls)
	})
}
