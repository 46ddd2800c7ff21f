package structuring

import (
	"fmt"
	"strings"

	"github.com/futig/lab-assistant/internal/catalog"
)

const systemPrompt = `Ты — эксперт по анализу медицинских документов. Твоя задача - извлечь ключевые показатели из предоставленного текста медицинского анализа (например, общего анализа крови, биохимии, общего анализа мочи) и вернуть их в строго определенном JSON формате. Внимательно читай названия показателей, включая аббревиатуры в скобках, и их единицы измерения. Если показатель представлен и в абсолютных значениях, и в процентах, извлеки оба с разными ключами, если это указано в списке.`

const truncationNote = "\n... (текст был усечен из-за большой длины)"

var instructionHeader = []string{
	"Проанализируй следующий текст, извлеченный из медицинского анализа. Это может быть общий анализ крови (ОАК), биохимический анализ крови (БАК), общий анализ мочи (ОАМ) или их комбинация.",
	"Извлеки следующие показатели (если они присутствуют) и их значения. Ключи в JSON должны быть на английском языке, как указано в списке ниже.",
}

var instructionRules = []string{
	`Если показатель имеет числовое значение и единицы измерения, включи их вместе в значение как одну строку. Например, "148,10 г/л" или "4,98 10^12/л".`,
	`Если показатель текстовый (например, "отрицательно", "следы", "не обнаружено", "желтый"), используй это текстовое значение.`,
	"Если показатель отсутствует в тексте, не включай его в JSON. Не придумывай значения.",
	"Не добавляй никакие другие поля, кроме указанных в списке выше.",
	"Не включай в JSON референсные значения, комментарии лаборатории, ФИО пациента, дату и т.п., только фактический результат анализа для каждого показателя из списка.",
	"Ответ должен быть ТОЛЬКО JSON объектом без каких-либо дополнительных пояснений, комментариев или markdown-разметки типа ```json ... ```.",
	"Пример желаемого JSON формата:",
	"{",
	`  "hemoglobin": "148,10 г/л",`,
	`  "rbc": "4,98 10^12/л",`,
	`  "hematocrit": "41,60 %",`,
	`  "neutrophils_abs": "4,00 10^9/л",`,
	`  "neutrophils_pct": "65,90 %",`,
	`  "urine_protein": "отрицательно"`,
	"}",
}

// buildUserPrompt lists every catalog field with its description, then the rules and the text
func buildUserPrompt(cat *catalog.Catalog, text string) string {
	var b strings.Builder
	for _, line := range instructionHeader {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, f := range cat.Fields() {
		fmt.Fprintf(&b,
			"- %s (ключ в JSON: %q, значение должно быть строкой, включающей число и единицы измерения, "+
				"если есть, например \"148,10 г/л\" или \"4,98 10^12/л\" или \"0,00 %%\". "+
				"Если значение текстовое, например \"отрицательно\", то используй его.)\n",
			cat.PromptDescription(f.Key), f.Key,
		)
	}
	for _, line := range instructionRules {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nВот текст для анализа:\n--- НАЧАЛО ТЕКСТА ИЗ PDF ---\n")
	b.WriteString(text)
	b.WriteString("\n--- КОНЕЦ ТЕКСТА ИЗ PDF ---")
	return b.String()
}

// truncate cuts text to limit runes and marks the cut
func truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + truncationNote, true
}
