package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	pdflib "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const pageSeparator = "\n\n--- Page Break ---\n\n"

// Status classifies an extraction outcome
type Status int

const (
	StatusOK Status = iota
	// StatusEmpty means the document has no text layer, e.g. a scan
	StatusEmpty
	StatusEncrypted
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusEncrypted:
		return "encrypted"
	case StatusCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the tagged outcome of an extraction
type Result struct {
	Status Status
	Text   string
	Pages  int
}

// Extractor pulls the text layer out of PDF documents with bounded parallelism
type Extractor struct {
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewExtractor(workers int64, logger *zap.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		sem:    semaphore.NewWeighted(workers),
		logger: logger,
	}
}

// Extract returns the text of every page joined by a page separator.
// Document problems are reported through Result.Status; the error is only
// set when ctx ends before a worker slot frees up.
func (e *Extractor) Extract(ctx context.Context, data []byte) (Result, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("wait for extraction slot: %w", err)
	}
	defer e.sem.Release(1)

	res := extract(ctx, data)
	ctxzap.Info(ctx, "pdf text extracted",
		zap.Stringer("status", res.Status),
		zap.Int("pages", res.Pages),
		zap.Int("text_length", len(res.Text)),
	)

	return res, nil
}

func extract(ctx context.Context, data []byte) (res Result) {
	// the parser panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			ctxzap.Warn(ctx, "pdf parser panicked", zap.Any("panic", r))
			res = Result{Status: StatusCorrupt}
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdflib.ErrInvalidPassword) {
			return Result{Status: StatusEncrypted}
		}
		ctxzap.Debug(ctx, "pdf open failed", zap.Error(err))
		return Result{Status: StatusCorrupt}
	}

	total := reader.NumPage()
	if total == 0 {
		return Result{Status: StatusCorrupt}
	}

	parts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			ctxzap.Debug(ctx, "page text extraction failed", zap.Int("page", i), zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return Result{Status: StatusEmpty, Pages: total}
	}

	return Result{
		Status: StatusOK,
		Text:   strings.Join(parts, pageSeparator),
		Pages:  total,
	}
}
