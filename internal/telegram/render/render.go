package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/editable"
)

// MaxDisplayLength caps the rendered analysis block in runes
const MaxDisplayLength = 4000

const ellipsis = "..."

// GenderDisplay returns the gender as shown to the user
func GenderDisplay(gender string) string {
	switch gender {
	case entity.GenderMale:
		return "Мужской"
	case entity.GenderFemale:
		return "Женский"
	default:
		return "не указан"
	}
}

// FormatWeight prints a weight without trailing zeros
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// RenderAnalysisHTML renders known values with bold labels, capped at MaxDisplayLength
func RenderAnalysisHTML(cat *catalog.Catalog, values entity.AnalysisValues, source entity.AnalysisSource) string {
	lines := []string{html.EscapeString(editable.Header(source)), ""}
	for _, e := range cat.Ordered(values) {
		lines = append(lines, fmt.Sprintf("<b>%s</b>: %s", html.EscapeString(e.Label), html.EscapeString(e.Value)))
	}
	return CapLines(strings.Join(lines, "\n"), MaxDisplayLength)
}

// CapLines cuts text to limit runes on a line boundary and appends an ellipsis.
// A first line longer than limit is cut mid-line.
func CapLines(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	budget := limit - utf8.RuneCountInString(ellipsis)
	var (
		b    strings.Builder
		size int
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if size+n > budget {
			break
		}
		b.WriteString(line)
		size += n
	}
	if size == 0 {
		return string([]rune(text)[:budget]) + ellipsis
	}
	return b.String() + ellipsis
}

// RenderDroppedFields lists keys that were not recognized
func RenderDroppedFields(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return fmt.Sprintf(MsgDroppedFields, strings.Join(keys, ", "))
}

// RenderPresetChoice describes the current preset selection
func RenderPresetChoice(presets []entity.Preset, codes []string, noneText string) string {
	switch {
	case len(codes) == 0:
		return MsgNothingChosen
	case entity.IsNoneOnly(codes):
		return noneText
	default:
		return strings.Join(entity.PresetLabels(presets, codes), ", ")
	}
}

// RenderSourceForEdit names the source in the edit instructions
func RenderSourceForEdit(source entity.AnalysisSource) string {
	name := source.DisplayName()
	if source.IsEdited() {
		name = strings.Replace(name, "(отредактировано)", "(отредактировано ранее)", 1)
	}
	return name
}

// RenderProfile renders the profile card as HTML
func RenderProfile(p *entity.Profile) string {
	rd := p.RegistrationData
	lines := []string{
		"👤 <b>Ваш профиль</b>",
		fmt.Sprintf("ID: <code>%d</code>", p.UserID),
	}
	if p.Username != "" {
		lines = append(lines, "Юзернейм: @"+html.EscapeString(p.Username))
	}

	lines = append(lines, "", "📋 <b>Данные анкеты:</b>", "Пол: "+GenderDisplay(rd.Gender))
	lines = append(lines, "Возраст: "+orUnset(rd.Age > 0, strconv.Itoa(rd.Age)+" лет"))
	lines = append(lines, "Вес: "+orUnset(rd.Weight > 0, FormatWeight(rd.Weight)+" кг"))
	lines = append(lines, "Рост: "+orUnset(rd.Height > 0, strconv.Itoa(rd.Height)+" см"))
	lines = append(lines,
		"Хронические заболевания: "+html.EscapeString(profileAnswer(entity.MedicalHistoryPresets, rd.MedicalHistoryList, rd.MedicalHistoryText)),
		"Привычки: "+html.EscapeString(profileAnswer(entity.HabitPresets, rd.HabitsList, rd.HabitsText)),
		"Питание: "+html.EscapeString(profileAnswer(entity.DietPresets, rd.DietList, rd.DietText)),
	)
	if rd.SleepPattern != "" {
		lines = append(lines, "Сон: "+html.EscapeString(rd.SleepPattern))
	}

	lines = append(lines, "", "Для изменения данных используйте кнопку '🔄 Начать заново (сброс)' или команду /reregister.")
	return strings.Join(lines, "\n")
}

func orUnset(ok bool, v string) string {
	if ok {
		return v
	}
	return "не указан"
}

func profileAnswer(presets []entity.Preset, codes []string, text string) string {
	var parts []string
	if len(codes) > 0 && !entity.IsNoneOnly(codes) {
		parts = append(parts, entity.PresetLabels(presets, codes)...)
	}
	if !entity.IsDismissiveAnswer(text) {
		parts = append(parts, strings.TrimSpace(text))
	}
	switch {
	case len(parts) > 0:
		return strings.Join(parts, "; ")
	case entity.IsNoneOnly(codes):
		return "отсутствуют"
	default:
		return "не указаны"
	}
}
