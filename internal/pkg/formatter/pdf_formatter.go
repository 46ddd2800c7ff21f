package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In Docker runtime fonts are copied to /app/ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
	pdfFontSystemPath  = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
)

type PDFFormatter struct {
	fontPaths []string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{
		fontPaths: []string{pdfFontRuntimePath, pdfFontSourcePath, pdfFontSystemPath},
	}
}

// resolveFontPath returns the first DejaVuSans location that exists
func (pf *PDFFormatter) resolveFontPath() string {
	for _, p := range pf.fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(report Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Cyrillic needs the UTF-8 font; core fonts only cover Latin-1.
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := pf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(baseTitle))
	pdf.Ln(12)

	if sub := report.Subtitle(); sub != "" {
		pdf.SetFont(fontName, "I", 10)
		pdf.Cell(0, 6, tr(sub))
		pdf.Ln(10)
	}

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()
	pdf.MultiCell(0, lineHeight*1.5, tr(plainText(report.Body)), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
