package structuring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/google/go-cmp/cmp"
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

func TestStructure(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want entity.AnalysisValues
	}{
		{
			name: "plain object",
			resp: `{"hemoglobin": "148 g/l"}`,
			want: entity.AnalysisValues{"hemoglobin": "148 g/l"},
		},
		{
			name: "prose around object",
			resp: "Вот результат:\n{\"wbc\": \"6,1 10^9/л\"}\nГотово.",
			want: entity.AnalysisValues{"wbc": "6,1 10^9/л"},
		},
		{
			name: "fenced",
			resp: "```json\n{\"plt\": \"250\"}\n```",
			want: entity.AnalysisValues{"plt": "250"},
		},
		{
			name: "reasoning with braces",
			resp: "<think>формат {ключ: значение}</think>\n{\"esr\": \"12\"}",
			want: entity.AnalysisValues{"esr": "12"},
		},
		{
			name: "mixed value kinds",
			resp: `{"hemoglobin": 148.10, "urine_protein": false, "esr": null, "extra": {"a": [1, 2]}}`,
			want: entity.AnalysisValues{
				"hemoglobin":    "148.10",
				"urine_protein": "false",
				"extra":         `{"a":[1,2]}`,
			},
		},
		{
			name: "empty object",
			resp: "{}",
			want: entity.AnalysisValues{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{resp: tt.resp}
			s := NewStructurer(llm, catalog.Default(), 15000)

			got, err := s.Structure(context.Background(), "Hemoglobin 148 g/l")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStructureFailures(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{name: "garbage", llm: &fakeLLM{resp: "извините, не могу"}},
		{name: "array", llm: &fakeLLM{resp: `["hemoglobin"]`}},
		{name: "broken json", llm: &fakeLLM{resp: `{"hemoglobin": }`}},
		{name: "completion error", llm: &fakeLLM{err: errors.New("timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStructurer(tt.llm, catalog.Default(), 15000)
			_, err := s.Structure(context.Background(), "text")
			require.ErrorIs(t, err, entity.ErrStructuringFailed)
		})
	}
}

func TestStructurePrompt(t *testing.T) {
	llm := &fakeLLM{resp: "{}"}
	s := NewStructurer(llm, catalog.Default(), 15000)

	_, err := s.Structure(context.Background(), "Гемоглобин 140")
	require.NoError(t, err)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, entity.RoleSystem, llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "JSON")

	user := llm.messages[1].Content
	for _, f := range catalog.Default().Fields() {
		assert.Contains(t, user, `"`+f.Key+`"`)
	}
	assert.Contains(t, user, "--- НАЧАЛО ТЕКСТА ИЗ PDF ---\nГемоглобин 140\n--- КОНЕЦ ТЕКСТА ИЗ PDF ---")
	assert.InDelta(t, 0.05, llm.opts.Temperature, 1e-6)
	assert.Equal(t, structuringTimeout, llm.opts.Timeout)
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("ж", 20)

	got, cut := truncate(text, 10)
	assert.True(t, cut)
	assert.Equal(t, strings.Repeat("ж", 10)+truncationNote, got)
	assert.Equal(t, 10+utf8.RuneCountInString(truncationNote), utf8.RuneCountInString(got))

	got, cut = truncate(text, 20)
	assert.False(t, cut)
	assert.Equal(t, text, got)
}
