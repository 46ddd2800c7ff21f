package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/editable"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ConfirmationHandler handles the confirm / edit / reload choice for parsed data
type ConfirmationHandler struct {
	BaseHandler
}

func NewConfirmationHandler(deps *Deps) *ConfirmationHandler {
	return &ConfirmationHandler{
		BaseHandler: BaseHandler{stateName: state.StateWaitingForConfirmation, deps: deps},
	}
}

func (h *ConfirmationHandler) Handle(ctx context.Context, ev *Event) error {
	cb := ev.Callback()
	if cb == nil || cb.Action != keyboard.ActionConfirm {
		return h.hint(ctx, ev, render.MsgUseConfirmButtons)
	}

	switch cb.Value {
	case keyboard.ValueOK:
		return h.confirm(ctx, ev)
	case keyboard.ValueEdit:
		return h.startEdit(ctx, ev)
	case keyboard.ValueReload:
		h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
		return h.showMethodChoice(ctx, ev, render.MsgChooseMethod)
	}
	return ignoreStale(ctx, ev)
}

// confirm persists the snapshot and delivers the report
func (h *ConfirmationHandler) confirm(ctx context.Context, ev *Event) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)

	values := data.ParsedAnalysis
	if len(values) == 0 {
		ctxzap.Warn(ctx, "confirmation without parsed data")
		return h.showMethodChoice(ctx, ev, render.MsgNoDataForReport)
	}

	if _, err := h.deps.Profiles.SaveAnalysisSnapshot(ctx, ev.UserID, values); err != nil {
		ctxzap.Warn(ctx, "analysis snapshot not saved, continuing", zap.Error(err))
		h.sendMessage(ctx, ev.ChatID, render.MsgSnapshotNotSaved, nil)
	}

	profile, err := h.deps.Profiles.LoadProfile(ctx, ev.UserID)
	if err != nil {
		ctxzap.Warn(ctx, "profile unavailable for report", zap.Error(err))
		h.sendMessage(ctx, ev.ChatID, render.MsgProfileMissing, nil)
		return h.deps.States.Clear(ctx, ev.UserID)
	}

	progress := NewProgressNotifier(h.deps.Channel, ev.ChatID)
	progress.Start(ctx)
	err = h.deps.Composer.ComposeAndSend(ctx, ev.ChatID, profile, values, h.deps.Keyboard.AfterReport())
	progress.Stop()
	if err != nil {
		ctxzap.Error(ctx, "report delivery failed", zap.Error(err))
	}

	return h.deps.States.Clear(ctx, ev.UserID)
}

// startEdit sends the edit instructions
func (h *ConfirmationHandler) startEdit(ctx context.Context, ev *Event) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
	if strings.TrimSpace(data.EditableText) == "" {
		return h.showMethodChoice(ctx, ev, render.MsgNoDataToEdit)
	}

	text := fmt.Sprintf(render.MsgEditInstructions, render.RenderSourceForEdit(data.Source))
	h.sendFormatted(ctx, ev.ChatID, text, entity.ParseModeMarkdown, h.deps.Keyboard.Edit())

	return h.deps.States.Transition(ctx, ev.UserID, state.StateWaitingForEditedText)
}

// EditedTextHandler receives the corrected editable block
type EditedTextHandler struct {
	BaseHandler
}

func NewEditedTextHandler(deps *Deps) *EditedTextHandler {
	return &EditedTextHandler{
		BaseHandler: BaseHandler{stateName: state.StateWaitingForEditedText, deps: deps},
	}
}

func (h *EditedTextHandler) Handle(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case EventCallback:
		cb := ev.Callback()
		if cb == nil || cb.Action != keyboard.ActionEdit {
			return ignoreStale(ctx, ev)
		}
		switch cb.Value {
		case keyboard.ValueResend:
			return h.resend(ctx, ev)
		case keyboard.ValueCancel:
			h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
			return h.showMethodChoice(ctx, ev, render.MsgEditCancelled)
		}
		return ignoreStale(ctx, ev)

	case EventText:
		return h.applyEdit(ctx, ev)
	}

	h.sendMessage(ctx, ev.ChatID, render.MsgEditTextExpected, nil)
	return nil
}

func (h *EditedTextHandler) resend(ctx context.Context, ev *Event) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	if strings.TrimSpace(data.EditableText) == "" {
		return h.showMethodChoice(ctx, ev, render.MsgNoEditableText)
	}

	h.sendFormatted(ctx, ev.ChatID, editable.CopyBlock(data.EditableText), entity.ParseModeMarkdown, nil)
	return nil
}

func (h *EditedTextHandler) applyEdit(ctx context.Context, ev *Event) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	values, err := editable.Decode(ctx, ev.Text)
	if err != nil {
		if !errors.Is(err, entity.ErrMalformedText) {
			ctxzap.Error(ctx, "failed to decode edited text", zap.Error(err))
		}
		h.sendMessage(ctx, ev.ChatID, render.MsgEditError, nil)
		return nil
	}
	if len(values) == 0 {
		h.sendFormatted(ctx, ev.ChatID, render.MsgEditEmpty, entity.ParseModeMarkdown, nil)
		return nil
	}

	source := data.Source
	if source == "" {
		source = entity.SourcePDF
	}

	return h.present(ctx, ev, values, source.Edited())
}
