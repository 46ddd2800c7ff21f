package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CommandHandler serves slash commands, menu buttons and after-report actions.
// These work in any state.
type CommandHandler struct {
	BaseHandler
}

func NewCommandHandler(deps *Deps) *CommandHandler {
	return &CommandHandler{
		BaseHandler: BaseHandler{stateName: state.StateNone, deps: deps},
	}
}

// Start greets registered users and runs registration for everyone else
func (h *CommandHandler) Start(ctx context.Context, ev *Event) error {
	profile, err := h.deps.Profiles.LoadProfile(ctx, ev.UserID)
	if err != nil {
		if !errors.Is(err, entity.ErrProfileNotFound) {
			ctxzap.Warn(ctx, "profile unreadable, registering again", zap.Error(err))
		}
		return h.reregister(ctx, ev, false)
	}

	if err := h.deps.States.Clear(ctx, ev.UserID); err != nil {
		ctxzap.Warn(ctx, "failed to clear session", zap.Error(err))
	}

	h.sendMessage(ctx, ev.ChatID, fmt.Sprintf(render.MsgWelcomeBack, profile.DisplayName()), h.deps.Keyboard.MainMenu())
	return nil
}

// Reregister drops the session and the profile and starts registration over
func (h *CommandHandler) Reregister(ctx context.Context, ev *Event) error {
	return h.reregister(ctx, ev, true)
}

// ResetButton is Reregister triggered from the main menu
func (h *CommandHandler) ResetButton(ctx context.Context, ev *Event) error {
	h.sendMessage(ctx, ev.ChatID, render.MsgResetting, nil)
	return h.reregister(ctx, ev, true)
}

func (h *CommandHandler) reregister(ctx context.Context, ev *Event, explicit bool) error {
	if err := h.deps.States.Clear(ctx, ev.UserID); err != nil {
		ctxzap.Warn(ctx, "failed to clear session", zap.Error(err))
	}

	prefix := ""
	if explicit {
		prefix = render.MsgRegistrationBegins
	}
	if h.deps.Profiles.HasProfile(ctx, ev.UserID) {
		prefix = render.MsgProfileReset
		if err := h.deps.Profiles.DeleteProfile(ctx, ev.UserID); err != nil {
			ctxzap.Warn(ctx, "failed to delete profile", zap.Error(err))
			prefix = render.MsgProfileResetFailed
		}
	}

	h.sendMessage(ctx, ev.ChatID, prefix+render.MsgWelcome, h.deps.Keyboard.RegistrationStart())
	return h.deps.States.Transition(ctx, ev.UserID, state.StateRegistrationStart)
}

// Cancel leaves whatever flow the user is in
func (h *CommandHandler) Cancel(ctx context.Context, ev *Event) error {
	current, err := h.deps.States.GetState(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}

	if current == state.StateNone {
		h.sendMessage(ctx, ev.ChatID, render.MsgNothingToCancel, nil)
		return nil
	}

	if err := h.deps.States.Clear(ctx, ev.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	ctxzap.Info(ctx, "flow cancelled", zap.String("state", string(current)))

	var markup any = h.deps.Keyboard.RegistrationStart()
	if h.deps.Profiles.HasProfile(ctx, ev.UserID) {
		markup = h.deps.Keyboard.MainMenu()
	}
	h.sendMessage(ctx, ev.ChatID, render.MsgCancelled, markup)
	return nil
}

// Unknown answers commands the bot does not serve
func (h *CommandHandler) Unknown(ctx context.Context, ev *Event) error {
	ctxzap.Debug(ctx, "unknown command", zap.String("command", ev.Command))
	h.sendMessage(ctx, ev.ChatID, render.ErrUnknownCommand, nil)
	return nil
}

func (h *CommandHandler) Help(ctx context.Context, ev *Event) error {
	h.sendFormatted(ctx, ev.ChatID, render.MsgHelp, entity.ParseModeMarkdown, nil)
	return nil
}

func (h *CommandHandler) About(ctx context.Context, ev *Event) error {
	h.sendMessage(ctx, ev.ChatID, render.MsgAbout, nil)
	return nil
}

// Profile shows the stored profile card
func (h *CommandHandler) Profile(ctx context.Context, ev *Event) error {
	profile, err := h.deps.Profiles.LoadProfile(ctx, ev.UserID)
	if err != nil {
		ctxzap.Info(ctx, "profile requested but not available", zap.Error(err))
		h.sendMessage(ctx, ev.ChatID, render.MsgNotRegisteredYet, h.deps.Keyboard.RegistrationStart())
		return h.deps.States.Transition(ctx, ev.UserID, state.StateRegistrationStart)
	}

	h.sendFormatted(ctx, ev.ChatID, render.RenderProfile(profile), entity.ParseModeHTML, nil)
	return nil
}

// AttachAnalyses opens the analysis intake for registered users
func (h *CommandHandler) AttachAnalyses(ctx context.Context, ev *Event) error {
	if !h.deps.Profiles.HasProfile(ctx, ev.UserID) {
		h.sendMessage(ctx, ev.ChatID, render.MsgNotRegistered, nil)
		return nil
	}
	return h.showMethodChoice(ctx, ev, render.MsgChooseMethod)
}

// AnalyzeNew restarts the intake after a report
func (h *CommandHandler) AnalyzeNew(ctx context.Context, ev *Event) error {
	return h.showMethodChoice(ctx, ev, render.MsgAnalyzeNew)
}

// Download exports the last report in the requested format
func (h *CommandHandler) Download(ctx context.Context, ev *Event, format entity.ResultFormat) error {
	report, err := h.deps.Reports.Get(ev.UserID)
	if err != nil {
		h.sendMessage(ctx, ev.ChatID, render.MsgReportNotAvailable, nil)
		return nil
	}

	f, err := h.deps.Formatters.Create(format)
	if err != nil {
		return fmt.Errorf("create formatter: %w", err)
	}

	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("format report as %s: %w", format, err)
	}

	name := formatter.FileName(f, report.CreatedAt)
	if err := h.deps.Channel.SendDocument(ctx, ev.ChatID, name, data); err != nil {
		return err
	}

	ctxzap.Info(ctx, "report exported", zap.String("format", string(format)), zap.Int("size", len(data)))
	return nil
}

// NeutralHandler handles input when no flow is in progress
type NeutralHandler struct {
	BaseHandler
}

func NewNeutralHandler(deps *Deps) *NeutralHandler {
	return &NeutralHandler{
		BaseHandler: BaseHandler{stateName: state.StateNone, deps: deps},
	}
}

func (h *NeutralHandler) Handle(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case EventText:
		switch ev.TrimmedText() {
		case "":
			return nil
		case keyboard.BtnRegister:
			return h.beginRegistration(ctx, ev)
		}
		return h.chat(ctx, ev)

	case EventDocument:
		if !h.deps.Profiles.HasProfile(ctx, ev.UserID) {
			h.sendMessage(ctx, ev.ChatID, render.MsgNotRegistered, nil)
			return nil
		}
		return h.showMethodChoice(ctx, ev, render.MsgChooseMethod)

	case EventCallback:
		return ignoreStale(ctx, ev)
	}
	return nil
}

// chat answers a free question through the completion API
func (h *NeutralHandler) chat(ctx context.Context, ev *Event) error {
	thinkingID := h.sendMessage(ctx, ev.ChatID, render.MsgThinking, nil)

	typing := NewTypingNotifier(h.deps.Channel, ev.ChatID)
	typing.Start(ctx)
	answer, err := h.deps.Consultant.Answer(ctx, ev.Text)
	typing.Stop()

	h.deleteQuietly(ctx, ev.ChatID, thinkingID)

	switch {
	case errors.Is(err, entity.ErrEmptyCompletion):
		h.sendMessage(ctx, ev.ChatID, render.MsgChatUnhelpful, nil)
	case err != nil:
		ctxzap.Error(ctx, "chat completion failed", zap.Error(err))
		h.sendMessage(ctx, ev.ChatID, render.MsgChatUnavailable, nil)
	default:
		h.sendFormatted(ctx, ev.ChatID, answer, entity.ParseModeMarkdown, nil)
	}
	return nil
}
