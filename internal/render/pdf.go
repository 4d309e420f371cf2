// Package render produces downloadable documents from aggregated shopping lists.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	pageWidth   = 595.28
	pageHeight  = 841.89
	topMargin   = 42.0
	leftMargin  = 100.0
	lineHeight  = 20.0
	fontSize    = 12.0
	headerTitle = "Shopping list:"
	footerTitle = "@foodgram"
)

// PDFRenderer lays out a shopping list as a single-column A4 document.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer returns a renderer. fontPath points at a TrueType font used for
// non-Latin ingredient names; when empty the core Helvetica font is used.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath}
}

func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

func (r *PDFRenderer) FileName() string {
	return "shopping_cart.pdf"
}

// Render writes one "name - amount unit" line per item between a header and a footer.
func (r *PDFRenderer) Render(items []types.ShoppingListItem) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(leftMargin, topMargin, leftMargin)
	pdf.SetAutoPageBreak(false, 0)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		family = "ShoppingList"
		pdf.AddUTF8Font(family, "", r.fontPath)
		translate = func(s string) string { return s }
	}

	newPage := func() {
		pdf.AddPage()
		pdf.SetFillColor(230, 230, 230)
		pdf.Rect(0, 0, pageWidth, pageHeight, "F")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(family, "", fontSize)
		pdf.SetY(topMargin)
	}
	newPage()

	pdf.CellFormat(0, lineHeight, translate(headerTitle), "", 1, "C", false, 0, "")
	for _, item := range items {
		if pdf.GetY()+lineHeight > pageHeight-topMargin {
			newPage()
		}
		line := fmt.Sprintf("%s - %d %s", item.Name, item.TotalAmount, item.MeasurementUnit)
		pdf.CellFormat(0, lineHeight, translate(line), "", 1, "L", false, 0, "")
	}

	if pdf.GetY()+2*lineHeight > pageHeight-topMargin {
		newPage()
	}
	y := pdf.GetY() + lineHeight/2
	pdf.Line(leftMargin, y, pageWidth-leftMargin, y)
	pdf.SetY(y + lineHeight/2)
	pdf.CellFormat(0, lineHeight, translate(footerTitle), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
