package editable

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	headerPrefix = "✅ Обработанные данные анализов из "
	copyHeader   = "✅ Обработанные данные анализов (для редактирования скопируйте этот текст):"
	copyDivider  = "--- ТЕКСТ ДЛЯ КОПИРОВАНИЯ И РЕДАКТИРОВАНИЯ ---"
	copyFooter   = "После редактирования, просто отправьте исправленный текст."
	fenceOpen    = "```text"
	fenceClose   = "```"
)

// Header returns the first line of an editable block for the given source
func Header(source entity.AnalysisSource) string {
	return headerPrefix + source.DisplayName() + ":"
}

// KnownHeaders lists every header line Decode strips
func KnownHeaders() []string {
	headers := []string{copyHeader, copyDivider}
	for _, src := range entity.KnownSources() {
		headers = append(headers, Header(src))
	}
	return headers
}

// Encode renders values as an editable block: header then "key: value" lines
// in canonical order.
func Encode(values entity.AnalysisValues, source entity.AnalysisSource) string {
	var sb strings.Builder
	sb.WriteString(Header(source))
	for _, e := range catalog.Default().Ordered(values) {
		sb.WriteByte('\n')
		sb.WriteString(e.Key)
		sb.WriteString(": ")
		sb.WriteString(e.Value)
	}
	return sb.String()
}

// Decode parses an edited block back into a mapping.
// Known headers are stripped only before the first data line. Lines without
// a separator or with an empty key are skipped, later duplicates win.
func Decode(ctx context.Context, text string) (entity.AnalysisValues, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("decode edited text: %w", entity.ErrMalformedText)
	}

	headers := make(map[string]struct{})
	for _, h := range KnownHeaders() {
		headers[h] = struct{}{}
	}

	values := make(entity.AnalysisValues)
	leading := true
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == fenceOpen || line == fenceClose {
			continue
		}
		if leading {
			if _, ok := headers[line]; ok {
				continue
			}
			leading = false
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			ctxzap.Debug(ctx, "skipping line without separator", zap.Int("line", n+1))
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			ctxzap.Debug(ctx, "skipping line with empty key", zap.Int("line", n+1))
			continue
		}
		values[key] = strings.TrimSpace(value)
	}

	return values, nil
}

// CopyBlock wraps an editable block in a fenced section the user can copy
func CopyBlock(text string) string {
	return copyHeader + "\n" + fenceOpen + "\n" + text + "\n" + fenceClose + "\n" + copyFooter
}
