package handlers

import (
	"context"
	"strings"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/futig/lab-assistant/internal/pkg/validator"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// EventKind classifies an incoming event
type EventKind int

const (
	EventOther EventKind = iota
	EventText
	EventDocument
	EventCallback
	EventForm
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventDocument:
		return "document"
	case EventCallback:
		return "callback"
	case EventForm:
		return "form"
	default:
		return "other"
	}
}

// Document describes an attached file before it is downloaded
type Document struct {
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// Event represents a normalized incoming update
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	MessageID int
	From      entity.UserIdentity

	Text    string
	Command string

	Document *Document

	CallbackData string
	CallbackID   string

	FormPayload []byte
}

// NewEvent normalizes a Telegram update. Updates the bot does not act on
// return false.
func NewEvent(update tgbotapi.Update) (*Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return nil, false
		}

		ev := &Event{
			Kind:      EventOther,
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			From:      identity(msg.From),
		}

		switch {
		case msg.Document != nil:
			ev.Kind = EventDocument
			ev.Document = &Document{
				FileID:   msg.Document.FileID,
				FileName: msg.Document.FileName,
				MimeType: msg.Document.MimeType,
				Size:     int64(msg.Document.FileSize),
			}
		case msg.IsCommand():
			ev.Kind = EventText
			ev.Text = msg.Text
			ev.Command = msg.Command()
		case msg.Text != "":
			ev.Kind = EventText
			ev.Text = msg.Text
		}
		return ev, true

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return nil, false
		}
		return &Event{
			Kind:         EventCallback,
			UserID:       cq.From.ID,
			ChatID:       cq.Message.Chat.ID,
			MessageID:    cq.Message.MessageID,
			From:         identity(cq.From),
			CallbackData: cq.Data,
			CallbackID:   cq.ID,
		}, true
	}

	return nil, false
}

// NewFormEvent wraps a hosted form submission into an event
func NewFormEvent(userID, chatID int64, payload []byte) *Event {
	return &Event{
		Kind:        EventForm,
		UserID:      userID,
		ChatID:      chatID,
		From:        entity.UserIdentity{ID: userID},
		FormPayload: payload,
	}
}

func identity(u *tgbotapi.User) entity.UserIdentity {
	return entity.UserIdentity{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// IsCommand reports whether the event is a slash command
func (e *Event) IsCommand() bool {
	return e.Command != ""
}

// Callback parses the callback data, nil for other events or malformed data
func (e *Event) Callback() *keyboard.CallbackData {
	if e.Kind != EventCallback {
		return nil
	}
	cb, err := keyboard.ParseCallback(e.CallbackData)
	if err != nil {
		return nil
	}
	return cb
}

// TrimmedText returns the message text without surrounding whitespace
func (e *Event) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}

// Handler defines the interface for state-specific handlers
type Handler interface {
	// Handle processes an event for this state
	Handle(ctx context.Context, ev *Event) error

	// GetState returns the state this handler manages
	GetState() state.State
}

// Deps bundles the collaborators shared by all handlers
type Deps struct {
	Channel    Channel
	States     *state.Manager
	Keyboard   *keyboard.Builder
	Profiles   ProfileRepository
	Structurer Structurer
	Composer   ReportComposer
	Extractor  PDFExtractor
	Validator  *validator.Validator
	Catalog    *catalog.Catalog
	Reports    ReportStore
	Formatters *formatter.Factory
	FormLinks  FormLinker
	Consultant Consultant
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	stateName state.State
	deps      *Deps
}

// GetState implements Handler
func (h *BaseHandler) GetState() state.State {
	return h.stateName
}
