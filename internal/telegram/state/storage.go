package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
)

// State is the conversation step a user is in
type State string

// StateNone is the neutral state: no flow in progress
const StateNone State = ""

// Registration states
const (
	StateRegistrationStart State = "registration_start"
	StateGender            State = "gender"
	StateAge               State = "age"
	StateWeight            State = "weight"
	StateHeight            State = "height"
	StateMedicalHistory    State = "medical_history"
	StateHabits            State = "habits"
	StateDiet              State = "diet"
	StateSleep             State = "sleep"
)

// Analysis intake states
const (
	StateChooseMethod           State = "choose_method"
	StateWaitingForPDF          State = "waiting_for_pdf"
	StateWaitingForConfirmation State = "waiting_for_confirmation"
	StateWaitingForEditedText   State = "waiting_for_edited_text"
)

var registrationStates = map[State]bool{
	StateRegistrationStart: true,
	StateGender:            true,
	StateAge:               true,
	StateWeight:            true,
	StateHeight:            true,
	StateMedicalHistory:    true,
	StateHabits:            true,
	StateDiet:              true,
	StateSleep:             true,
}

var analysisStates = map[State]bool{
	StateChooseMethod:           true,
	StateWaitingForPDF:          true,
	StateWaitingForConfirmation: true,
	StateWaitingForEditedText:   true,
}

// IsRegistration reports whether s belongs to the registration flow
func (s State) IsRegistration() bool {
	return registrationStates[s]
}

// IsAnalysis reports whether s belongs to the analysis intake flow
func (s State) IsAnalysis() bool {
	return analysisStates[s]
}

// IsValid reports whether s is a known state
func (s State) IsValid() bool {
	return s == StateNone || s.IsRegistration() || s.IsAnalysis()
}

// Session is the per-user conversation record
type Session struct {
	UserID    int64           `json:"user_id"`
	State     State           `json:"state,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData holds answers and intake progress between steps.
// Version 1: Initial implementation
type StateData struct {
	// Version for compatibility tracking (current version: 1)
	Version int `json:"version,omitempty"`

	// Registration answers
	Gender             string   `json:"gender,omitempty"`
	Age                int      `json:"age,omitempty"`
	Weight             float64  `json:"weight,omitempty"`
	Height             int      `json:"height,omitempty"`
	MedicalHistoryList []string `json:"medical_history_list,omitempty"`
	MedicalHistoryText string   `json:"medical_history_text,omitempty"`
	HabitsList         []string `json:"habits_list,omitempty"`
	HabitsText         string   `json:"habits_text,omitempty"`
	DietList           []string `json:"diet_list,omitempty"`
	DietText           string   `json:"diet_text,omitempty"`
	SleepPattern       string   `json:"sleep_pattern,omitempty"`

	// Awaiting free text for the current preset step
	AwaitingOtherText bool `json:"awaiting_other_text,omitempty"`

	// Last bot prompt (deleted once superseded)
	LastMessageID int `json:"last_message_id,omitempty"`

	// Analysis intake
	ParsedAnalysis        entity.AnalysisValues `json:"parsed_analysis,omitempty"`
	EditableText          string                `json:"editable_text,omitempty"`
	Source                entity.AnalysisSource `json:"source,omitempty"`
	ConfirmationMessageID int                   `json:"confirmation_message_id,omitempty"`
}

const (
	// StateDataCurrentVersion is the current version of StateData
	StateDataCurrentVersion = 1
)

// RegistrationData converts collected answers into the persisted profile shape
func (d *StateData) RegistrationData() entity.RegistrationData {
	return entity.RegistrationData{
		Gender:             d.Gender,
		Age:                d.Age,
		Weight:             d.Weight,
		Height:             d.Height,
		MedicalHistoryList: d.MedicalHistoryList,
		MedicalHistoryText: d.MedicalHistoryText,
		HabitsList:         d.HabitsList,
		HabitsText:         d.HabitsText,
		DietList:           d.DietList,
		DietText:           d.DietText,
		SleepPattern:       d.SleepPattern,
	}
}

// Storage defines the interface for session persistence
type Storage interface {
	// Get retrieves a session by user ID, entity.ErrSessionNotFound if absent
	Get(ctx context.Context, userID int64) (*Session, error)

	// Set saves a session
	Set(ctx context.Context, session *Session) error

	// Delete removes a session
	Delete(ctx context.Context, userID int64) error
}
