package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	reportTemperature = 0.6
	reportTimeout     = 180 * time.Second
)

// User-facing report notices
const (
	MsgPreparing   = "Анализирую ваши данные и готовлю заключение... Это может занять до 2-3 минут."
	MsgEmptyReport = "Нейросеть не предоставила содержательного ответа. Попробуйте позже."
	MsgReportError = "К сожалению, не удалось получить заключение от нейросети. Попробуйте запросить позже или обратитесь к администратору."
)

// Composer builds the report prompt, requests the completion and delivers it
type Composer struct {
	llm        LLMConnector
	sender     Sender
	reports    ReportStore
	catalog    *catalog.Catalog
	chunkDelay time.Duration
	now        func() time.Time
}

// NewComposer creates a report composer
func NewComposer(
	llm LLMConnector,
	sender Sender,
	reports ReportStore,
	cat *catalog.Catalog,
	chunkDelay time.Duration,
) *Composer {
	return &Composer{
		llm:        llm,
		sender:     sender,
		reports:    reports,
		catalog:    cat,
		chunkDelay: chunkDelay,
		now:        time.Now,
	}
}

// ComposeAndSend delivers the report for the confirmed values to chatID.
// finalMarkup is attached to the last delivered message only. Completion
// failures are reported to the user and do not return an error; the returned
// error reflects delivery problems.
func (c *Composer) ComposeAndSend(
	ctx context.Context,
	chatID int64,
	profile *entity.Profile,
	values entity.AnalysisValues,
	finalMarkup any,
) error {
	if _, err := c.sender.Send(ctx, entity.OutgoingMessage{ChatID: chatID, Text: MsgPreparing}); err != nil {
		ctxzap.Warn(ctx, "failed to send preparing notice", zap.Error(err))
	}

	resp, err := c.llm.Complete(ctx, BuildMessages(c.catalog, profile, values), entity.CompletionOptions{
		Temperature: reportTemperature,
		Timeout:     reportTimeout,
	})
	switch {
	case errors.Is(err, entity.ErrEmptyCompletion):
		ctxzap.Warn(ctx, "report completion is empty", zap.Error(err))
		return c.send(ctx, chatID, MsgEmptyReport, "", finalMarkup)
	case err != nil:
		ctxzap.Error(ctx, "report completion failed", zap.Error(err))
		return c.send(ctx, chatID, MsgReportError, "", finalMarkup)
	}

	body := Clean(resp)
	if body == "" {
		ctxzap.Warn(ctx, "report completion is empty after cleaning",
			zap.Int("raw_length", len(resp)),
		)
		return c.send(ctx, chatID, MsgEmptyReport, "", finalMarkup)
	}

	c.reports.Put(profile.UserID, formatter.Report{
		PatientName: profile.DisplayName(),
		CreatedAt:   c.now(),
		Body:        body,
	})

	chunks := SplitChunks(body, MaxMessageLength)
	ctxzap.Info(ctx, "delivering report", zap.Int("chunks", len(chunks)))

	for i, chunk := range chunks {
		var markup any
		if i == len(chunks)-1 {
			markup = finalMarkup
		}
		if err := c.send(ctx, chatID, chunk, entity.ParseModeMarkdown, markup); err != nil {
			return fmt.Errorf("send report chunk %d/%d: %w", i+1, len(chunks), err)
		}

		if i < len(chunks)-1 && c.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.chunkDelay):
			}
		}
	}

	return nil
}

func (c *Composer) send(ctx context.Context, chatID int64, text, parseMode string, markup any) error {
	_, err := c.sender.Send(ctx, entity.OutgoingMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
		Markup:    markup,
	})
	return err
}
