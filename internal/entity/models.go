package entity

import (
	"slices"
	"strings"
	"time"
)

// Gender values collected during registration
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// PresetNone is the sentinel preset meaning "nothing applies"
const PresetNone = "none"

// Preset is a predefined answer offered as a button during registration
type Preset struct {
	Code  string
	Label string
}

// MedicalHistoryPresets lists chronic conditions offered on the medical history step
var MedicalHistoryPresets = []Preset{
	{Code: "diabetes", Label: "Диабет"},
	{Code: "hypertension", Label: "Гипертония"},
	{Code: "thyroid_disorders", Label: "Заболевания щитовидной железы"},
	{Code: "anemia", Label: "Анемия"},
	{Code: PresetNone, Label: "Нет хронических заболеваний"},
}

// HabitPresets lists habits offered on the habits step
var HabitPresets = []Preset{
	{Code: "smoking", Label: "🚬 Курение"},
	{Code: "alcohol", Label: "🍷 Алкоголь (регулярно)"},
	{Code: PresetNone, Label: "✅ Нет зависимостей"},
}

// DietPresets lists diet features offered on the diet step
var DietPresets = []Preset{
	{Code: "vegetarian", Label: "🥦 Вегетарианство"},
	{Code: "vegan", Label: "🥕 Веганство"},
	{Code: "keto", Label: "🥩 Кето-диета"},
	{Code: "gluten_free", Label: "🚫 Без глютена"},
	{Code: "lactose_free", Label: "🥛 Без лактозы"},
	{Code: PresetNone, Label: "🍽️ Обычное питание"},
}

// FindPreset returns the preset with the given code
func FindPreset(presets []Preset, code string) (Preset, bool) {
	for _, p := range presets {
		if p.Code == code {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetLabels maps preset codes to their labels, keeping unknown codes as is
func PresetLabels(presets []Preset, codes []string) []string {
	labels := make([]string, 0, len(codes))
	for _, code := range codes {
		if p, ok := FindPreset(presets, code); ok {
			labels = append(labels, p.Label)
			continue
		}
		labels = append(labels, code)
	}
	return labels
}

// AddPresetChoice records a preset selection.
// Choosing PresetNone replaces everything with the sentinel, any other
// choice is appended once and removes the sentinel.
func AddPresetChoice(current []string, choice string) []string {
	if choice == PresetNone {
		return []string{PresetNone}
	}

	result := slices.DeleteFunc(slices.Clone(current), func(code string) bool {
		return code == PresetNone
	})
	if !slices.Contains(result, choice) {
		result = append(result, choice)
	}
	return result
}

// IsNoneOnly reports whether the preset list holds only the sentinel
func IsNoneOnly(codes []string) bool {
	return len(codes) == 1 && codes[0] == PresetNone
}

// IsDismissiveAnswer reports whether free text means "nothing to add"
func IsDismissiveAnswer(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "нет", "no", "none":
		return true
	default:
		return false
	}
}

// RegistrationData holds answers collected by the registration flow
type RegistrationData struct {
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
	Complaints         string   `json:"complaints,omitempty"`
}

// Profile is the persisted registration snapshot of a user
type Profile struct {
	UserID           int64            `json:"user_id"`
	Username         string           `json:"username,omitempty"`
	FirstName        string           `json:"first_name,omitempty"`
	LastName         string           `json:"last_name,omitempty"`
	RegistrationData RegistrationData `json:"registration_data"`
	CreatedAt        time.Time        `json:"created_at"`
}

// DisplayName returns the best available name to greet the user with
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "":
		return p.FirstName
	case p.Username != "":
		return p.Username
	default:
		return "друг"
	}
}

// ResultFormat is a downloadable report format
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

// IsValid reports whether f is a supported export format
func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// UserIdentity is the channel-provided identity of the sender
type UserIdentity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}
