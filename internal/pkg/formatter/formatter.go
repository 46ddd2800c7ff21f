package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
)

const baseTitle = "Заключение по анализам"

// Report is a composed report ready for export
type Report struct {
	PatientName string
	CreatedAt   time.Time
	Body        string
}

// Subtitle returns the line printed under the title
func (r Report) Subtitle() string {
	var parts []string
	if r.PatientName != "" {
		parts = append(parts, "Пациент: "+r.PatientName)
	}
	if !r.CreatedAt.IsZero() {
		parts = append(parts, "Дата: "+r.CreatedAt.Format("02.01.2006 15:04"))
	}
	return strings.Join(parts, ", ")
}

type Formatter interface {
	Format(report Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FileName builds the download name for a report
func FileName(f Formatter, createdAt time.Time) string {
	return "analysis_report_" + createdAt.Format("20060102_150405") + f.FileExtension()
}

var (
	markdownEmphasis = regexp.MustCompile(`\*\*|__|\*`)
	markdownHeading  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
)

// plainText strips the Markdown markers the report body uses
func plainText(text string) string {
	text = markdownHeading.ReplaceAllString(text, "")
	return markdownEmphasis.ReplaceAllString(text, "")
}
