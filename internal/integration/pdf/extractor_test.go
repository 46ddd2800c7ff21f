package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		if text != "" {
			doc.Cell(0, 10, text)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	e := NewExtractor(2, zap.NewNop())

	res, err := e.Extract(context.Background(), buildPDF(t, "Hemoglobin 140", "WBC 6.1"))
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Hemoglobin")
	assert.Contains(t, res.Text, "--- Page Break ---")
}

func TestExtractNoTextLayer(t *testing.T) {
	e := NewExtractor(1, zap.NewNop())

	res, err := e.Extract(context.Background(), buildPDF(t, ""))
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, res.Status)
	assert.Empty(t, res.Text)
}

func TestExtractCorrupt(t *testing.T) {
	e := NewExtractor(1, zap.NewNop())

	for name, data := range map[string][]byte{
		"garbage":   []byte("definitely not a pdf"),
		"empty":     nil,
		"truncated": buildPDF(t, "Hemoglobin 140")[:200],
	} {
		t.Run(name, func(t *testing.T) {
			res, err := e.Extract(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, StatusCorrupt, res.Status)
		})
	}
}

func TestExtractCancelledWhileWaiting(t *testing.T) {
	e := NewExtractor(1, zap.NewNop())
	require.NoError(t, e.sem.Acquire(context.Background(), 1))
	defer e.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "encrypted", StatusEncrypted.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
