// Package report renders facility documents as PDF with fpdf.
package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// Page layout in millimetres.
const (
	pageMargin   = 15.0
	labelWidth   = 60.0
	rowHeight    = 7.0
	titleSize    = 16.0
	headingSize  = 12.0
	bodySize     = 9.0
	footerOffset = -12.0
)

// Options configures a Renderer.
type Options struct {
	// FontPath is a UTF-8 TrueType font. Without it the core Helvetica
	// font is used and characters outside cp1252 cannot be shown.
	FontPath   string
	FontFamily string
	Author     string
}

// Renderer implements core.DocumentRenderer. It keeps the font bytes in
// memory and builds a fresh fpdf document per call, so it is safe for
// concurrent use.
type Renderer struct {
	opts     Options
	fontData []byte
}

// New creates a renderer, reading the font file when one is configured.
func New(opts Options) (*Renderer, error) {
	if opts.FontFamily == "" {
		opts.FontFamily = "ipaexg"
	}
	r := &Renderer{opts: opts}
	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("read pdf font: %w", err)
		}
		r.fontData = data
	}
	return r, nil
}

// Render writes doc as a PDF to w.
func (r *Renderer) Render(w io.Writer, doc core.FacilityDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)

	family, tr := r.setupFont(pdf)
	pdf.SetTitle(doc.Title, true)
	if r.opts.Author != "" {
		pdf.SetAuthor(r.opts.Author, true)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(footerOffset)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(family, "", titleSize)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(family, "", bodySize)
	meta := fmt.Sprintf("事業所番号: %s    出力日時: %s", doc.OfficeCode, doc.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, rowHeight, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	valueWidth := pageWidth(pdf) - labelWidth
	for _, section := range doc.Sections {
		pdf.SetFont(family, "", headingSize)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", true, 0, "")

		pdf.SetFont(family, "", bodySize)
		for _, e := range section.Entries {
			writeEntry(pdf, tr, e, valueWidth)
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

// setupFont registers the configured TTF or falls back to Helvetica with a
// cp1252 translator.
func (r *Renderer) setupFont(pdf *fpdf.Fpdf) (string, func(string) string) {
	if len(r.fontData) > 0 {
		pdf.AddUTF8FontFromBytes(r.opts.FontFamily, "", r.fontData)
		return r.opts.FontFamily, func(s string) string { return s }
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

// writeEntry prints one label/value row. Long values wrap inside the value
// column and the label cell is sized to the wrapped height afterwards.
func writeEntry(pdf *fpdf.Fpdf, tr func(string) string, e core.DocumentEntry, valueWidth float64) {
	value := tr(e.Value)
	lines := math.Ceil(pdf.GetStringWidth(value) / (valueWidth - 2))
	estimate := rowHeight * max(lines, 1)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+estimate > pageHeight-bottom {
		pdf.AddPage()
	}

	x, y := pdf.GetXY()
	pdf.SetXY(x+labelWidth, y)
	pdf.MultiCell(valueWidth, rowHeight, value, "1", "L", false)
	next := pdf.GetY()

	height := next - y
	if height <= 0 {
		height = rowHeight
	}
	pdf.SetXY(x, y)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(labelWidth, height, tr(e.Label), "1", 0, "L", true, 0, "")
	pdf.SetXY(x, next)
}

func pageWidth(pdf *fpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return w - left - right
}
