package editable

import (
	"context"
	"strings"
	"testing"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	got := Encode(entity.AnalysisValues{"wbc": "6.1", "hemoglobin": "140 г/л"}, entity.SourcePDF)

	want := "✅ Обработанные данные анализов из PDF файла:\n" +
		"hemoglobin: 140 г/л\n" +
		"wbc: 6.1"
	assert.Equal(t, want, got)
}

func TestDecodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	values := entity.AnalysisValues{
		"hemoglobin":  "140 г/л",
		"wbc":         "6.1",
		"urine_color": "соломенно-желтый",
		"esr":         "12 мм/ч (норма: 2-15)",
	}

	for _, src := range entity.KnownSources() {
		t.Run(string(src), func(t *testing.T) {
			got, err := Decode(ctx, Encode(values, src))
			require.NoError(t, err)
			if diff := cmp.Diff(values, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeIdempotent(t *testing.T) {
	ctx := context.Background()
	first, err := Decode(ctx, "hemoglobin: 140\nwbc : 6.1\n")
	require.NoError(t, err)

	second, err := Decode(ctx, Encode(first, entity.SourceForm.Edited()))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeCopyBlock(t *testing.T) {
	ctx := context.Background()
	text := CopyBlock(Encode(entity.AnalysisValues{"plt": "250"}, entity.SourcePDF))

	got, err := Decode(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisValues{"plt": "250"}, got)
}

func TestDecodeSkipsInvalidLines(t *testing.T) {
	ctx := context.Background()
	text := "\n   \nно разделителя нет\n: пустой ключ\nplt: 250\nplt: 260\nratio: 1:2\n"

	got, err := Decode(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisValues{"plt": "260", "ratio": "1:2"}, got)
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(context.Background(), Header(entity.SourcePDF))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := Decode(context.Background(), "plt: \xff\xfe")
	require.ErrorIs(t, err, entity.ErrMalformedText)
}

func TestDecodeKeepsHeaderAfterData(t *testing.T) {
	ctx := context.Background()
	header := Header(entity.SourcePDF)
	text := header + "\nplt: 250\n" + header + "\nwbc: 6.1"

	got, err := Decode(ctx, text)
	require.NoError(t, err)
	want := entity.AnalysisValues{"plt": "250", "wbc": "6.1"}
	want[strings.TrimSuffix(header, ":")] = ""
	assert.Equal(t, want, got)
}
