package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/integration/pdf"
	"github.com/futig/lab-assistant/internal/pkg/logger"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const bytesPerMB = 1024 * 1024

// ChooseMethodHandler handles the input method choice
type ChooseMethodHandler struct {
	BaseHandler
}

func NewChooseMethodHandler(deps *Deps) *ChooseMethodHandler {
	return &ChooseMethodHandler{
		BaseHandler: BaseHandler{stateName: state.StateChooseMethod, deps: deps},
	}
}

func (h *ChooseMethodHandler) Handle(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case EventDocument:
		if err := h.deps.States.Transition(ctx, ev.UserID, state.StateWaitingForPDF); err != nil {
			return fmt.Errorf("enter waiting_for_pdf: %w", err)
		}
		return h.processDocument(ctx, ev)

	case EventCallback:
		cb := ev.Callback()
		if cb == nil || cb.Action != keyboard.ActionMethod {
			return ignoreStale(ctx, ev)
		}

		switch cb.Value {
		case keyboard.ValuePDF:
			h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
			h.sendMessage(ctx, ev.ChatID, render.MsgAttachPDF, nil)
			return h.deps.States.Transition(ctx, ev.UserID, state.StateWaitingForPDF)

		case keyboard.ValueCancel:
			if err := h.deps.Channel.Edit(ctx, ev.ChatID, ev.MessageID, render.MsgMethodCancelled, nil); err != nil {
				ctxzap.Warn(ctx, "failed to edit method prompt", zap.Error(err))
				h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
				h.sendMessage(ctx, ev.ChatID, render.MsgMethodCancelled, nil)
			}
			return h.deps.States.Clear(ctx, ev.UserID)
		}
		return ignoreStale(ctx, ev)
	}

	h.sendMessage(ctx, ev.ChatID, render.MsgUseMethodButtons, nil)
	return nil
}

// WaitingForPDFHandler accepts the analysis PDF
type WaitingForPDFHandler struct {
	BaseHandler
}

func NewWaitingForPDFHandler(deps *Deps) *WaitingForPDFHandler {
	return &WaitingForPDFHandler{
		BaseHandler: BaseHandler{stateName: state.StateWaitingForPDF, deps: deps},
	}
}

func (h *WaitingForPDFHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind != EventDocument {
		return h.hint(ctx, ev, render.MsgAttachPDF)
	}
	return h.processDocument(ctx, ev)
}

// processDocument runs validation, download, extraction and structuring.
// Invalid documents keep the state; later failures return to the method choice.
func (h *BaseHandler) processDocument(ctx context.Context, ev *Event) error {
	doc := ev.Document
	ctx = logDocument(ctx, doc)

	if err := h.deps.Validator.ValidateDocument(doc.MimeType, doc.Size); err != nil {
		ctxzap.Info(ctx, "document rejected", zap.Error(err))
		if errors.Is(err, entity.ErrFileTooLarge) {
			h.sendMessage(ctx, ev.ChatID, fmt.Sprintf(render.MsgPDFTooLarge, h.deps.Validator.MaxPDFSize()/bytesPerMB), nil)
		} else {
			h.sendMessage(ctx, ev.ChatID, render.MsgNotPDF, nil)
		}
		return nil
	}

	processingID := h.sendMessage(ctx, ev.ChatID, render.MsgPDFReceived, nil)

	typing := NewTypingNotifier(h.deps.Channel, ev.ChatID)
	typing.Start(ctx)
	defer typing.Stop()

	data, err := h.deps.Channel.DownloadFile(ctx, doc.FileID, h.deps.Validator.MaxPDFSize())
	if err != nil {
		ctxzap.Error(ctx, "failed to download document", zap.Error(err))
		h.deleteQuietly(ctx, ev.ChatID, processingID)
		if errors.Is(err, entity.ErrFileTooLarge) {
			h.sendMessage(ctx, ev.ChatID, fmt.Sprintf(render.MsgPDFTooLarge, h.deps.Validator.MaxPDFSize()/bytesPerMB), nil)
			return nil
		}
		return h.showMethodChoice(ctx, ev, render.MsgDownloadFailed)
	}

	result, err := h.deps.Extractor.Extract(ctx, data)
	if err != nil {
		ctxzap.Error(ctx, "pdf extraction failed", zap.Error(err))
		h.updateOrSend(ctx, ev.ChatID, processingID, render.ErrUnexpected)
		return h.showMethodChoice(ctx, ev, render.MsgSelectMethodAgain)
	}
	if result.Status != pdf.StatusOK {
		ctxzap.Info(ctx, "pdf has no usable text",
			zap.Stringer("status", result.Status),
			zap.Int("pages", result.Pages),
		)
		h.updateOrSend(ctx, ev.ChatID, processingID, extractionMessage(result.Status))
		return h.showMethodChoice(ctx, ev, render.MsgSelectMethodAgain)
	}

	h.updateOrSend(ctx, ev.ChatID, processingID, render.MsgPDFExtracted)

	values, err := h.deps.Structurer.Structure(ctx, result.Text)
	if err != nil {
		ctxzap.Error(ctx, "failed to structure pdf text", zap.Error(err))
		h.deleteQuietly(ctx, ev.ChatID, processingID)
		h.sendMessage(ctx, ev.ChatID, render.MsgStructuringFailed, nil)
		return h.showMethodChoice(ctx, ev, render.MsgSelectMethodAgain)
	}

	h.deleteQuietly(ctx, ev.ChatID, processingID)
	return h.present(ctx, ev, values, entity.SourcePDF)
}

// updateOrSend edits a status message, sending a new one when it cannot be edited
func (h *BaseHandler) updateOrSend(ctx context.Context, chatID int64, messageID int, text string) {
	if messageID != 0 {
		err := h.deps.Channel.Edit(ctx, chatID, messageID, text, nil)
		if err == nil {
			return
		}
		ctxzap.Warn(ctx, "failed to edit status message", zap.Error(err))
	}
	h.sendMessage(ctx, chatID, text, nil)
}

func extractionMessage(status pdf.Status) string {
	switch status {
	case pdf.StatusEncrypted:
		return render.MsgPDFEncrypted
	case pdf.StatusCorrupt:
		return render.MsgPDFCorrupt
	default:
		return render.MsgPDFEmpty
	}
}

func logDocument(ctx context.Context, doc *Document) context.Context {
	return logger.AddFields(ctx,
		zap.String("file_name", doc.FileName),
		zap.String("mime_type", doc.MimeType),
		zap.Int64("file_size", doc.Size),
	)
}

// FormHandler accepts hosted form submissions in any analysis state
type FormHandler struct {
	BaseHandler
}

func NewFormHandler(deps *Deps) *FormHandler {
	return &FormHandler{
		BaseHandler: BaseHandler{stateName: state.StateChooseMethod, deps: deps},
	}
}

func (h *FormHandler) Handle(ctx context.Context, ev *Event) error {
	current, err := h.deps.States.GetState(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}
	if !current.IsAnalysis() {
		ctxzap.Info(ctx, "form payload outside analysis intake", zap.String("state", string(current)))
		h.sendMessage(ctx, ev.ChatID, render.MsgFormUnexpected, nil)
		return nil
	}

	processingID := h.sendMessage(ctx, ev.ChatID, render.MsgFormReceived, nil)

	values, err := h.deps.Validator.ParseFormPayload(ev.FormPayload)
	if err != nil {
		ctxzap.Warn(ctx, "form payload rejected", zap.Error(err))
		h.updateOrSend(ctx, ev.ChatID, processingID, render.MsgFormInvalid)
		return h.showMethodChoice(ctx, ev, render.MsgSelectMethodAgain)
	}

	h.deleteQuietly(ctx, ev.ChatID, processingID)
	return h.present(ctx, ev, values, entity.SourceForm)
}
