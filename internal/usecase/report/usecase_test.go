package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	resp     string
	err      error
	messages []entity.ChatMessage
	opts     entity.CompletionOptions
}

func (f *fakeLLM) Complete(_ context.Context, messages []entity.ChatMessage, opts entity.CompletionOptions) (string, error) {
	f.messages = messages
	f.opts = opts
	return f.resp, f.err
}

type recordingSender struct {
	mu   sync.Mutex
	sent []entity.OutgoingMessage
}

func (s *recordingSender) Send(_ context.Context, msg entity.OutgoingMessage) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return len(s.sent), nil
}

type memReports struct {
	reports map[int64]formatter.Report
}

func (m *memReports) Put(userID int64, r formatter.Report) {
	if m.reports == nil {
		m.reports = map[int64]formatter.Report{}
	}
	m.reports[userID] = r
}

const finalMarkup = "after-report-keyboard"

func testProfile() *entity.Profile {
	return &entity.Profile{
		UserID:    1,
		FirstName: "Иван",
		RegistrationData: entity.RegistrationData{
			Gender:             entity.GenderMale,
			Age:                30,
			Weight:             80.5,
			Height:             180,
			MedicalHistoryList: []string{entity.PresetNone},
			HabitsList:         []string{"smoking"},
			HabitsText:         "кофе",
			SleepPattern:       "7 часов",
		},
	}
}

func TestComposeAndSendSingleMessage(t *testing.T) {
	llm := &fakeLLM{resp: "<think>\nрассуждения\n</think>\n**Заключение**: норма"}
	sender := &recordingSender{}
	reports := &memReports{}
	c := NewComposer(llm, sender, reports, catalog.Default(), 0)

	err := c.ComposeAndSend(context.Background(), 100, testProfile(), entity.AnalysisValues{"hemoglobin": "148 g/l"}, finalMarkup)
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, MsgPreparing, sender.sent[0].Text)
	assert.Equal(t, "**Заключение**: норма", sender.sent[1].Text)
	assert.Equal(t, entity.ParseModeMarkdown, sender.sent[1].ParseMode)
	assert.Equal(t, finalMarkup, sender.sent[1].Markup)

	assert.InDelta(t, 0.6, llm.opts.Temperature, 1e-6)
	assert.Equal(t, 180*time.Second, llm.opts.Timeout)
	assert.Equal(t, hematologistPrompt, llm.messages[0].Content)
	assert.Contains(t, llm.messages[1].Content, "Гемоглобин (Hb) 148 g/l")

	r, ok := reports.reports[1]
	require.True(t, ok)
	assert.Equal(t, "Иван", r.PatientName)
	assert.Equal(t, "**Заключение**: норма", r.Body)
}

func TestComposeAndSendChunks(t *testing.T) {
	line := strings.Repeat("а", 99) + "\n"
	body := strings.Repeat(line, 100)

	sender := &recordingSender{}
	c := NewComposer(&fakeLLM{resp: body}, sender, &memReports{}, catalog.Default(), time.Millisecond)

	err := c.ComposeAndSend(context.Background(), 100, testProfile(), entity.AnalysisValues{}, finalMarkup)
	require.NoError(t, err)

	chunks := sender.sent[1:]
	require.Len(t, chunks, 3)
	var joined strings.Builder
	for i, m := range chunks {
		joined.WriteString(m.Text)
		if i < len(chunks)-1 {
			assert.Nil(t, m.Markup)
		}
	}
	assert.Equal(t, finalMarkup, chunks[len(chunks)-1].Markup)
	assert.Equal(t, strings.TrimSpace(body), joined.String())
}

func TestComposeAndSendFailures(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
		want string
	}{
		{name: "completion error", llm: &fakeLLM{err: errors.New("deadline")}, want: MsgReportError},
		{name: "empty completion", llm: &fakeLLM{err: fmt.Errorf("model m returned empty content: %w", entity.ErrEmptyCompletion)}, want: MsgEmptyReport},
		{name: "only reasoning", llm: &fakeLLM{resp: "<think>ничего</think>  "}, want: MsgEmptyReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			reports := &memReports{}
			c := NewComposer(tt.llm, sender, reports, catalog.Default(), 0)

			err := c.ComposeAndSend(context.Background(), 100, testProfile(), entity.AnalysisValues{}, finalMarkup)
			require.NoError(t, err)

			last := sender.sent[len(sender.sent)-1]
			assert.Equal(t, tt.want, last.Text)
			assert.Equal(t, finalMarkup, last.Markup)
			assert.Empty(t, reports.reports)
		})
	}
}

func TestBuildPatientBlock(t *testing.T) {
	got := BuildPatientBlock(testProfile().RegistrationData)
	want := strings.Join([]string{
		"1. Вводные данные пациента:",
		"Пол: Мужской",
		"Возраст: 30 лет",
		"Вес: 80.5 кг",
		"Рост: 180 см",
		"Основные жалобы: Не указаны в профиле",
		"Хронические заболевания: Отсутствуют (со слов пациента)",
		"Привычки: 🚬 Курение; кофе",
		"Питание: Не указаны",
		"Сон: 7 часов",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestCombineAnswers(t *testing.T) {
	assert.Equal(t, notSpecified, combineAnswers(entity.HabitPresets, nil, ""))
	assert.Equal(t, absentByPatient, combineAnswers(entity.HabitPresets, []string{entity.PresetNone}, "нет"))
	assert.Equal(t, "астма", combineAnswers(entity.MedicalHistoryPresets, []string{entity.PresetNone}, "астма"))
	assert.Equal(t, "Диабет; Анемия", combineAnswers(entity.MedicalHistoryPresets, []string{"diabetes", "anemia"}, "No"))
}

func TestBuildAnalysisBlockOrder(t *testing.T) {
	got := BuildAnalysisBlock(catalog.Default(), entity.AnalysisValues{
		"zzz_custom": "1",
		"wbc":        "6",
		"hemoglobin": "140",
	})
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "2. Показатели анализа крови:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Гемоглобин"))
	assert.Equal(t, "Zzz custom 1", lines[3])
}

func TestSplitChunks(t *testing.T) {
	long := strings.Repeat("б", 4500)
	text := "первая строка\n" + long + "\nпоследняя"

	chunks := SplitChunks(text, MaxMessageLength)
	require.Len(t, chunks, 3)
	assert.Equal(t, "первая строка\n", chunks[0])
	assert.Equal(t, long+"\n", chunks[1])
	assert.Equal(t, "последняя", chunks[2])
	assert.Equal(t, text, strings.Join(chunks, ""))

	for _, c := range SplitChunks(strings.Repeat("в\n", 5000), MaxMessageLength) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), MaxMessageLength)
	}

	assert.Equal(t, []string{"short"}, SplitChunks("short", MaxMessageLength))
	assert.Nil(t, SplitChunks("", MaxMessageLength))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "ответ", Clean("<think>a\nb</think>\n ответ "))
	assert.Equal(t, "x y", Clean("<think>1</think>x <think>2</think>y"))
}

func TestConsultant(t *testing.T) {
	llm := &fakeLLM{resp: "<think>hmm</think>Пейте воду."}
	got, err := NewConsultant(llm).Answer(context.Background(), " болит голова ")
	require.NoError(t, err)
	assert.Equal(t, "Пейте воду.", got)
	assert.Equal(t, "болит голова", llm.messages[1].Content)
	assert.Equal(t, chatTimeout, llm.opts.Timeout)

	_, err = NewConsultant(&fakeLLM{resp: "<think>.</think>"}).Answer(context.Background(), "?")
	require.ErrorIs(t, err, entity.ErrEmptyCompletion)
}
