package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
)

const hematologistPrompt = "Вы — врач-гематолог. Дайте понятную, но профессиональную оценку анализа крови, которая будет полезна как пациенту, так и медицинским специалистам. Если пользователь укажет данные, которые не могут быть реальными или вызывают сомнение, проигнорируй их и добавь в конце ответа: “Некоторые данные вызывают сомнения и были проигнорированы!”"

const responseTemplate = `

---
Формат ответа:

1. Оценка результатов
- Какие показатели отклоняются от нормы

2. О чем говорят изменения
- Возможные причины отклонений 
- Какие заболевания можно предположить
- Влияние возраста, пола и других факторов пациента

3. Что делать дальше
- Какие анализы/обследования нужны дополнительно
- Когда нужно срочно обратиться к врачу
- Какие изменения в образе жизни могут помочь

---

Требования к ответу:
Профессионально, но понятно для пациента  
Конкретно и по делу  
С указанием степени срочности рекомендаций  
Без излишней тревожности, но с указанием на опасные симптомы  

Избегать:
Чрезмерно сложных медицинских терминов без пояснений  
Расплывчатых формулировок  
Необоснованных предположений  

Ответ должен помочь пациенту понять свое состояние и дальнейшие действия, оставаясь при этом профессионально точным.
`

const (
	notSpecified     = "Не указаны"
	absentByPatient  = "Отсутствуют (со слов пациента)"
	noComplaints     = "Не указаны в профиле"
	genderNotDefined = "Не указан"
)

func genderDisplay(gender string) string {
	switch gender {
	case entity.GenderMale:
		return "Мужской"
	case entity.GenderFemale:
		return "Женский"
	default:
		return genderNotDefined
	}
}

// combineAnswers merges preset labels with free text.
// A "none"-only list without supplementary text reads as absent.
func combineAnswers(presets []entity.Preset, codes []string, text string) string {
	var parts []string
	if len(codes) > 0 && !containsNone(codes) {
		parts = append(parts, entity.PresetLabels(presets, codes)...)
	}
	if !entity.IsDismissiveAnswer(text) {
		parts = append(parts, strings.TrimSpace(text))
	}

	switch {
	case len(parts) > 0:
		return strings.Join(parts, "; ")
	case containsNone(codes):
		return absentByPatient
	default:
		return notSpecified
	}
}

func containsNone(codes []string) bool {
	for _, c := range codes {
		if c == entity.PresetNone {
			return true
		}
	}
	return false
}

// BuildPatientBlock renders the profile part of the report prompt
func BuildPatientBlock(data entity.RegistrationData) string {
	lines := []string{
		"1. Вводные данные пациента:",
		"Пол: " + genderDisplay(data.Gender),
	}
	if data.Age > 0 {
		lines = append(lines, fmt.Sprintf("Возраст: %d лет", data.Age))
	}
	if data.Weight > 0 {
		lines = append(lines, "Вес: "+strconv.FormatFloat(data.Weight, 'f', -1, 64)+" кг")
	}
	if data.Height > 0 {
		lines = append(lines, fmt.Sprintf("Рост: %d см", data.Height))
	}

	complaints := strings.TrimSpace(data.Complaints)
	if complaints == "" {
		complaints = noComplaints
	}
	lines = append(lines,
		"Основные жалобы: "+complaints,
		"Хронические заболевания: "+combineAnswers(entity.MedicalHistoryPresets, data.MedicalHistoryList, data.MedicalHistoryText),
		"Привычки: "+combineAnswers(entity.HabitPresets, data.HabitsList, data.HabitsText),
		"Питание: "+combineAnswers(entity.DietPresets, data.DietList, data.DietText),
	)

	sleep := strings.TrimSpace(data.SleepPattern)
	if sleep == "" {
		sleep = notSpecified
	}
	lines = append(lines, "Сон: "+sleep)

	return strings.Join(lines, "\n")
}

// BuildAnalysisBlock renders the lab values in canonical order
func BuildAnalysisBlock(cat *catalog.Catalog, values entity.AnalysisValues) string {
	lines := []string{"2. Показатели анализа крови:"}
	for _, e := range cat.Ordered(values) {
		lines = append(lines, e.Label+" "+e.Value)
	}
	return strings.Join(lines, "\n")
}

// BuildMessages assembles the completion request for a report
func BuildMessages(cat *catalog.Catalog, profile *entity.Profile, values entity.AnalysisValues) []entity.ChatMessage {
	user := BuildPatientBlock(profile.RegistrationData) + "\n\n" + BuildAnalysisBlock(cat, values) + responseTemplate
	return []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: hematologistPrompt},
		{Role: entity.RoleUser, Content: user},
	}
}
