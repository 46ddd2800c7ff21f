package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RegistrationStartHandler waits for the "register" reply button
type RegistrationStartHandler struct {
	BaseHandler
}

func NewRegistrationStartHandler(deps *Deps) *RegistrationStartHandler {
	return &RegistrationStartHandler{
		BaseHandler: BaseHandler{stateName: state.StateRegistrationStart, deps: deps},
	}
}

func (h *RegistrationStartHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind == EventText && ev.TrimmedText() == keyboard.BtnRegister {
		return h.beginRegistration(ctx, ev)
	}

	h.sendMessage(ctx, ev.ChatID, render.MsgPressRegister, h.deps.Keyboard.RegistrationStart())
	return nil
}

// GenderHandler handles the gender buttons
type GenderHandler struct {
	BaseHandler
}

func NewGenderHandler(deps *Deps) *GenderHandler {
	return &GenderHandler{
		BaseHandler: BaseHandler{stateName: state.StateGender, deps: deps},
	}
}

func (h *GenderHandler) Handle(ctx context.Context, ev *Event) error {
	cb := ev.Callback()
	if cb == nil || cb.Action != keyboard.ActionGender {
		return h.hint(ctx, ev, render.MsgUseGenderButtons)
	}
	if cb.Value != entity.GenderMale && cb.Value != entity.GenderFemale {
		h.sendMessage(ctx, ev.ChatID, render.MsgUseGenderButtons, nil)
		return nil
	}

	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}
	data.Gender = cb.Value

	h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
	data.LastMessageID = h.sendMessage(ctx, ev.ChatID, fmt.Sprintf(render.MsgAskAge, render.GenderDisplay(cb.Value)), nil)

	return h.deps.States.Save(ctx, ev.UserID, state.StateAge, data)
}

// AgeHandler handles the age answer
type AgeHandler struct {
	BaseHandler
}

func NewAgeHandler(deps *Deps) *AgeHandler {
	return &AgeHandler{
		BaseHandler: BaseHandler{stateName: state.StateAge, deps: deps},
	}
}

func (h *AgeHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind != EventText {
		return h.hint(ctx, ev, render.MsgAgeNotDigits)
	}

	age, err := h.deps.Validator.ValidateAge(ev.Text)
	if err != nil {
		msg := render.MsgAgeNotDigits
		if errors.Is(err, entity.ErrOutOfRange) {
			msg = render.MsgAgeOutOfRange
		}
		return h.reject(ctx, ev, msg, err)
	}

	return h.advance(ctx, ev, state.StateWeight, func(data *state.StateData) (string, any) {
		data.Age = age
		return fmt.Sprintf(render.MsgAskWeight, age), nil
	})
}

// WeightHandler handles the weight answer
type WeightHandler struct {
	BaseHandler
}

func NewWeightHandler(deps *Deps) *WeightHandler {
	return &WeightHandler{
		BaseHandler: BaseHandler{stateName: state.StateWeight, deps: deps},
	}
}

func (h *WeightHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind != EventText {
		return h.hint(ctx, ev, render.MsgWeightInvalid)
	}

	weight, err := h.deps.Validator.ValidateWeight(ev.Text)
	if err != nil {
		return h.reject(ctx, ev, render.MsgWeightInvalid, err)
	}

	return h.advance(ctx, ev, state.StateHeight, func(data *state.StateData) (string, any) {
		data.Weight = weight
		return fmt.Sprintf(render.MsgAskHeight, render.FormatWeight(weight)), nil
	})
}

// HeightHandler handles the height answer and opens the medical history step
type HeightHandler struct {
	BaseHandler
}

func NewHeightHandler(deps *Deps) *HeightHandler {
	return &HeightHandler{
		BaseHandler: BaseHandler{stateName: state.StateHeight, deps: deps},
	}
}

func (h *HeightHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind != EventText {
		return h.hint(ctx, ev, render.MsgHeightNotDigits)
	}

	height, err := h.deps.Validator.ValidateHeight(ev.Text)
	if err != nil {
		msg := render.MsgHeightNotDigits
		if errors.Is(err, entity.ErrOutOfRange) {
			msg = render.MsgHeightOutOfRange
		}
		return h.reject(ctx, ev, msg, err)
	}

	return h.advance(ctx, ev, state.StateMedicalHistory, func(data *state.StateData) (string, any) {
		data.Height = height
		return fmt.Sprintf(render.MsgAskMedical, height),
			h.deps.Keyboard.Presets(keyboard.ActionMedical, entity.MedicalHistoryPresets, nil)
	})
}

// reject re-prompts in the same state and removes the invalid answer
func (h *BaseHandler) reject(ctx context.Context, ev *Event, prompt string, cause error) error {
	ctxzap.Debug(ctx, "registration answer rejected",
		zap.String("state", string(h.stateName)),
		zap.Error(cause),
	)
	h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
	h.sendMessage(ctx, ev.ChatID, prompt, nil)
	return nil
}

// advance stores an accepted answer, cleans up the previous prompt and the
// answer, and asks the next question
func (h *BaseHandler) advance(ctx context.Context, ev *Event, next state.State, apply func(*state.StateData) (string, any)) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	prompt, markup := apply(data)

	h.deleteQuietly(ctx, ev.ChatID, data.LastMessageID)
	h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
	data.LastMessageID = h.sendMessage(ctx, ev.ChatID, prompt, markup)
	data.AwaitingOtherText = false

	return h.deps.States.Save(ctx, ev.UserID, next, data)
}

// SleepHandler takes the last answer, persists the profile and opens the analysis intake
type SleepHandler struct {
	BaseHandler
	now func() time.Time
}

func NewSleepHandler(deps *Deps) *SleepHandler {
	return &SleepHandler{
		BaseHandler: BaseHandler{stateName: state.StateSleep, deps: deps},
		now:         time.Now,
	}
}

func (h *SleepHandler) Handle(ctx context.Context, ev *Event) error {
	if ev.Kind != EventText || ev.TrimmedText() == "" {
		return h.hint(ctx, ev, render.MsgTextExpected)
	}

	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}
	data.SleepPattern = ev.TrimmedText()

	profile := &entity.Profile{
		UserID:           ev.UserID,
		Username:         ev.From.Username,
		FirstName:        ev.From.FirstName,
		LastName:         ev.From.LastName,
		RegistrationData: data.RegistrationData(),
		CreatedAt:        h.now().UTC(),
	}

	status := render.MsgProfileSaved
	if err := h.deps.Profiles.SaveProfile(ctx, profile); err != nil {
		ctxzap.Warn(ctx, "profile not saved, continuing", zap.Error(err))
		status = render.MsgProfileNotSave
	}

	if err := h.deps.States.Clear(ctx, ev.UserID); err != nil {
		ctxzap.Warn(ctx, "failed to clear registration session", zap.Error(err))
	}

	h.deleteQuietly(ctx, ev.ChatID, data.LastMessageID)
	h.sendMessage(ctx, ev.ChatID, fmt.Sprintf(render.MsgRegistered, status), h.deps.Keyboard.MainMenu())

	return h.showMethodChoice(ctx, ev, render.MsgChooseMethod)
}
