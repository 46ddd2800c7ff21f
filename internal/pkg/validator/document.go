package validator

import (
	"fmt"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
)

const pdfMimeType = "application/pdf"

// ValidateDocument checks an uploaded document before it is downloaded
func (v *Validator) ValidateDocument(mimeType string, size int64) error {
	if !strings.EqualFold(strings.TrimSpace(mimeType), pdfMimeType) {
		return fmt.Errorf("%w: mime type %q (allowed: %s)", entity.ErrInvalidDocument, mimeType, pdfMimeType)
	}

	if size > v.cfg.MaxPDFSize {
		return fmt.Errorf("%w: document is %d bytes (max %d)", entity.ErrFileTooLarge, size, v.cfg.MaxPDFSize)
	}

	return nil
}

// MaxPDFSize returns the configured upper bound for PDF uploads
func (v *Validator) MaxPDFSize() int64 {
	return v.cfg.MaxPDFSize
}
