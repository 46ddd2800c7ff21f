package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddPresetChoice(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		choice  string
		want    []string
	}{
		{name: "first choice", current: nil, choice: "diabetes", want: []string{"diabetes"}},
		{name: "accumulates", current: []string{"diabetes"}, choice: "anemia", want: []string{"diabetes", "anemia"}},
		{name: "no duplicates", current: []string{"diabetes"}, choice: "diabetes", want: []string{"diabetes"}},
		{name: "none clears others", current: []string{"diabetes", "anemia"}, choice: PresetNone, want: []string{PresetNone}},
		{name: "none on empty", current: nil, choice: PresetNone, want: []string{PresetNone}},
		{name: "choice removes none", current: []string{PresetNone}, choice: "smoking", want: []string{"smoking"}},
		{name: "none twice", current: []string{PresetNone}, choice: PresetNone, want: []string{PresetNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddPresetChoice(tt.current, tt.choice))
		})
	}
}

func TestAddPresetChoiceDoesNotMutateInput(t *testing.T) {
	current := []string{PresetNone, "x"}
	_ = AddPresetChoice(current, "y")
	assert.Equal(t, []string{PresetNone, "x"}, current)
}

func TestIsDismissiveAnswer(t *testing.T) {
	for _, s := range []string{"", " нет ", "Нет", "NO", "none"} {
		assert.True(t, IsDismissiveAnswer(s), s)
	}
	assert.False(t, IsDismissiveAnswer("астма"))
}

func TestPresetLabels(t *testing.T) {
	got := PresetLabels(MedicalHistoryPresets, []string{"diabetes", "custom"})
	assert.Equal(t, []string{"Диабет", "custom"}, got)
}

func TestAnalysisSource(t *testing.T) {
	assert.False(t, SourcePDF.IsEdited())
	assert.Equal(t, AnalysisSource("edited_from_pdf"), SourcePDF.Edited())
	assert.Equal(t, AnalysisSource("edited_from_pdf"), SourcePDF.Edited().Edited())
	assert.Equal(t, SourceForm, SourceForm.Edited().Origin())

	assert.Equal(t, "PDF файла", SourcePDF.DisplayName())
	assert.Equal(t, "онлайн формы (отредактировано)", SourceForm.Edited().DisplayName())
	assert.Equal(t, "данных", AnalysisSource("other").DisplayName())
}
