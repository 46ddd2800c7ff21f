package handlers

import (
	"context"
	"fmt"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/render"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// presetStep describes one multi-choice registration step
type presetStep struct {
	state     state.State
	next      state.State
	action    string
	nextValue string
	presets   []entity.Preset

	noneText    string
	otherPrompt string
	chosenFmt   string
	textFmt     string
	savedMsg    string

	list    func(*state.StateData) *[]string
	text    func(*state.StateData) *string
	nextKbd func(*keyboard.Builder) any
}

var (
	medicalStep = presetStep{
		state:       state.StateMedicalHistory,
		next:        state.StateHabits,
		action:      keyboard.ActionMedical,
		nextValue:   keyboard.ValueNextHabits,
		presets:     entity.MedicalHistoryPresets,
		noneText:    "нет хронических заболеваний",
		otherPrompt: render.MsgMedicalOther,
		chosenFmt:   render.MsgMedicalChosen,
		textFmt:     render.MsgMedicalText,
		savedMsg:    render.MsgMedicalSaved,
		list:        func(d *state.StateData) *[]string { return &d.MedicalHistoryList },
		text:        func(d *state.StateData) *string { return &d.MedicalHistoryText },
		nextKbd: func(b *keyboard.Builder) any {
			return b.Presets(keyboard.ActionHabit, entity.HabitPresets, nil)
		},
	}

	habitsStep = presetStep{
		state:       state.StateHabits,
		next:        state.StateDiet,
		action:      keyboard.ActionHabit,
		nextValue:   keyboard.ValueNextDiet,
		presets:     entity.HabitPresets,
		noneText:    "нет зависимостей",
		otherPrompt: render.MsgHabitsOther,
		chosenFmt:   render.MsgHabitsChosen,
		textFmt:     render.MsgHabitsText,
		savedMsg:    render.MsgHabitsSaved,
		list:        func(d *state.StateData) *[]string { return &d.HabitsList },
		text:        func(d *state.StateData) *string { return &d.HabitsText },
		nextKbd: func(b *keyboard.Builder) any {
			return b.Presets(keyboard.ActionDiet, entity.DietPresets, nil)
		},
	}

	dietStep = presetStep{
		state:       state.StateDiet,
		next:        state.StateSleep,
		action:      keyboard.ActionDiet,
		nextValue:   keyboard.ValueNextSleep,
		presets:     entity.DietPresets,
		noneText:    "обычное питание",
		otherPrompt: render.MsgDietOther,
		chosenFmt:   render.MsgDietChosen,
		textFmt:     render.MsgDietText,
		savedMsg:    render.MsgDietSaved,
		list:        func(d *state.StateData) *[]string { return &d.DietList },
		text:        func(d *state.StateData) *string { return &d.DietText },
		nextKbd:     func(*keyboard.Builder) any { return nil },
	}
)

// PresetStepHandler handles a registration step with preset buttons and a free text answer
type PresetStepHandler struct {
	BaseHandler
	step presetStep
}

func newPresetStepHandler(deps *Deps, step presetStep) *PresetStepHandler {
	return &PresetStepHandler{
		BaseHandler: BaseHandler{stateName: step.state, deps: deps},
		step:        step,
	}
}

// NewMedicalHistoryHandler handles chronic conditions
func NewMedicalHistoryHandler(deps *Deps) *PresetStepHandler {
	return newPresetStepHandler(deps, medicalStep)
}

// NewHabitsHandler handles habits
func NewHabitsHandler(deps *Deps) *PresetStepHandler {
	return newPresetStepHandler(deps, habitsStep)
}

// NewDietHandler handles diet features
func NewDietHandler(deps *Deps) *PresetStepHandler {
	return newPresetStepHandler(deps, dietStep)
}

func (h *PresetStepHandler) Handle(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case EventCallback:
		cb := ev.Callback()
		switch {
		case cb == nil:
			return ignoreStale(ctx, ev)
		case cb.Action == h.step.action && cb.Value == keyboard.ValueOther:
			return h.askOther(ctx, ev)
		case cb.Action == h.step.action:
			return h.choose(ctx, ev, cb.Value)
		case cb.Action == keyboard.ActionNext && cb.Value == h.step.nextValue:
			return h.proceed(ctx, ev, h.step.savedMsg, "")
		default:
			return ignoreStale(ctx, ev)
		}

	case EventText:
		text := ev.TrimmedText()
		if text == "" {
			break
		}
		h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
		return h.proceed(ctx, ev, fmt.Sprintf(h.step.textFmt, text), text)
	}

	h.sendMessage(ctx, ev.ChatID, render.MsgTextExpected, nil)
	return nil
}

func (h *PresetStepHandler) askOther(ctx context.Context, ev *Event) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	data.AwaitingOtherText = true
	h.sendMessage(ctx, ev.ChatID, h.step.otherPrompt, nil)

	return h.deps.States.UpdateStateData(ctx, ev.UserID, data)
}

// choose records a preset and refreshes the buttons in place
func (h *PresetStepHandler) choose(ctx context.Context, ev *Event, code string) error {
	if _, ok := entity.FindPreset(h.step.presets, code); !ok {
		ctxzap.Debug(ctx, "unknown preset ignored", zap.String("code", code))
		return nil
	}

	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	list := h.step.list(data)
	*list = entity.AddPresetChoice(*list, code)

	text := fmt.Sprintf(h.step.chosenFmt, render.RenderPresetChoice(h.step.presets, *list, h.step.noneText))
	kb := h.deps.Keyboard.PresetsWithNext(h.step.action, h.step.presets, *list, h.step.nextValue)

	if err := h.deps.Channel.Edit(ctx, ev.ChatID, ev.MessageID, text, &kb); err != nil {
		ctxzap.Warn(ctx, "failed to update preset message, sending a new one", zap.Error(err))
		h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
		data.LastMessageID = h.sendMessage(ctx, ev.ChatID, text, kb)
	} else {
		data.LastMessageID = ev.MessageID
	}

	return h.deps.States.UpdateStateData(ctx, ev.UserID, data)
}

// proceed stores the free text answer, if any, and opens the next step
func (h *PresetStepHandler) proceed(ctx context.Context, ev *Event, message, text string) error {
	data, err := h.deps.States.GetStateData(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	if text != "" {
		*h.step.text(data) = text
	}
	data.AwaitingOtherText = false

	h.deleteQuietly(ctx, ev.ChatID, data.LastMessageID)
	if ev.Kind == EventCallback && ev.MessageID != data.LastMessageID {
		h.deleteQuietly(ctx, ev.ChatID, ev.MessageID)
	}

	data.LastMessageID = h.sendMessage(ctx, ev.ChatID, message, h.step.nextKbd(h.deps.Keyboard))

	return h.deps.States.Save(ctx, ev.UserID, h.step.next, data)
}
