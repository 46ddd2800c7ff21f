package handlers

import (
	"context"
	"fmt"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/editable"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// sendMessage sends plain text and returns the message id, 0 on failure
func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string, markup any) int {
	return h.sendFormatted(ctx, chatID, text, "", markup)
}

func (h *BaseHandler) sendFormatted(ctx context.Context, chatID int64, text, parseMode string, markup any) int {
	id, err := h.deps.Channel.Send(ctx, entity.OutgoingMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
		Markup:    markup,
	})
	if err != nil {
		ctxzap.Warn(ctx, "message not delivered", zap.Error(err))
		return 0
	}
	return id
}

// deleteQuietly removes a superseded message. Already deleted messages are
// ignored, other failures are logged.
func (h *BaseHandler) deleteQuietly(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := h.deps.Channel.Delete(ctx, chatID, messageID); err != nil && !isMessageGone(err) {
		ctxzap.Warn(ctx, "failed to delete message",
			zap.Error(err),
			zap.Int("message_id", messageID),
		)
	}
}

// showMethodChoice resets intake progress and offers the input methods
func (h *BaseHandler) showMethodChoice(ctx context.Context, ev *Event, text string) error {
	url := ""
	if h.deps.FormLinks != nil {
		url = h.deps.FormLinks.FormURL(ev.UserID, ev.ChatID)
	}
	if text == render.MsgChooseMethod && url == "" {
		text = render.MsgChooseMethodNoForm
	}

	if err := h.deps.States.Save(ctx, ev.UserID, state.StateChooseMethod, &state.StateData{}); err != nil {
		return fmt.Errorf("enter choose_method: %w", err)
	}

	h.sendMessage(ctx, ev.ChatID, text, h.deps.Keyboard.Method(url))
	return nil
}

// present shows recognized values for confirmation. Unknown keys are
// dropped and listed in a note below the block.
func (h *BaseHandler) present(ctx context.Context, ev *Event, values entity.AnalysisValues, source entity.AnalysisSource) error {
	filtered, dropped := h.deps.Catalog.Filter(values)
	known := entity.AnalysisValues(filtered)

	ctxzap.Info(ctx, "analysis values recognized",
		zap.String("source", string(source)),
		zap.Int("known", len(known)),
		zap.Strings("dropped", dropped),
	)

	if len(known) == 0 {
		return h.showMethodChoice(ctx, ev, render.MsgNoKnownFields)
	}

	msgID, err := h.deps.Channel.Send(ctx, entity.OutgoingMessage{
		ChatID:    ev.ChatID,
		Text:      render.RenderAnalysisHTML(h.deps.Catalog, known, source),
		ParseMode: entity.ParseModeHTML,
		Markup:    h.deps.Keyboard.Confirm(),
	})
	if err != nil {
		return fmt.Errorf("send analysis for confirmation: %w", err)
	}

	if note := render.RenderDroppedFields(dropped); note != "" {
		h.sendMessage(ctx, ev.ChatID, note, nil)
	}

	data := &state.StateData{
		ParsedAnalysis:        known,
		EditableText:          editable.Encode(known, source),
		Source:                source,
		ConfirmationMessageID: msgID,
	}
	if err := h.deps.States.Save(ctx, ev.UserID, state.StateWaitingForConfirmation, data); err != nil {
		return fmt.Errorf("enter waiting_for_confirmation: %w", err)
	}
	return nil
}

// beginRegistration hides the reply keyboard and asks for the gender
func (h *BaseHandler) beginRegistration(ctx context.Context, ev *Event) error {
	h.sendMessage(ctx, ev.ChatID, render.MsgLetsBegin, h.deps.Keyboard.RemoveReply())
	msgID := h.sendMessage(ctx, ev.ChatID, render.MsgAskGender, h.deps.Keyboard.Gender())

	return h.deps.States.Save(ctx, ev.UserID, state.StateGender, &state.StateData{LastMessageID: msgID})
}

// hint answers input the current step does not accept. Stale button
// presses are ignored.
func (h *BaseHandler) hint(ctx context.Context, ev *Event, text string) error {
	if ev.Kind == EventCallback {
		return ignoreStale(ctx, ev)
	}
	h.sendMessage(ctx, ev.ChatID, text, nil)
	return nil
}

func ignoreStale(ctx context.Context, ev *Event) error {
	ctxzap.Debug(ctx, "ignoring stale callback", zap.String("data", ev.CallbackData))
	return nil
}
