package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF. When a font
// directory and TTF name are configured, that font is embedded so CJK
// text renders; otherwise the built-in core font is used.
type PDFExporter struct {
	fontDir  string
	fontFile string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(fontDir, fontFile string) *PDFExporter {
	return &PDFExporter{fontDir: fontDir, fontFile: fontFile}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", e.fontDir)
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	family := "Arial"
	if e.fontFile != "" {
		family = "custom"
		pdf.AddUTF8Font(family, "", e.fontFile)
		pdf.AddUTF8Font(family, "B", e.fontFile)
	}

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont(family, "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
