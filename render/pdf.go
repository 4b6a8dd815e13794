package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/abaevpavel/pdfer-base/currency"
	"github.com/abaevpavel/pdfer-base/model"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 5.0
	pdfMargin     = 15.0
)

// PDF lays out view as a letter-size internal scope report.
func PDF(view View) ([]byte, error) {
	if view.Data == nil {
		view.Data = &model.Document{}
	}
	doc := view.Data

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Internal Scope", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w := &pdfWriter{pdf: pdf, tr: tr}
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 18)
	pdf.CellFormat(0, 10, "Internal Scope", "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(100, 100, 100)
	w.line(reportMeta(view))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, cat := range doc.Categories {
		w.category(cat)
	}

	if len(view.CustomItems) > 0 {
		pdf.Ln(4)
		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 8, "Custom Items", "T", 1, "L", false, 0, "")
		for _, item := range view.CustomItems {
			w.item(item)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func reportMeta(view View) string {
	meta := ""
	if name := view.Data.Attr("projectName"); name != "" {
		meta = name + "  -  "
	}
	if len(view.Data.EstimatesInfo) > 0 {
		if sq := text(view.Data.EstimatesInfo[0].SquareFootage); sq != "" {
			meta += sq + " sq ft  -  "
		}
	}
	return meta + "Generated " + view.GeneratedAt.Format("Jan 2, 2006 15:04")
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) line(s string) {
	w.pdf.MultiCell(0, pdfLineHeight, w.tr(s), "", "L", false)
}

func (w *pdfWriter) category(cat model.Category) {
	pdf := w.pdf
	pageWidth, _ := pdf.GetPageSize()
	width := pageWidth - 2*pdfMargin

	pdf.SetFont(pdfFont, "B", 13)
	pdf.CellFormat(width*0.7, 8, w.tr(cat.Attr("name")), "B", 0, "L", false, 0, "")
	pdf.CellFormat(width*0.3, 8, w.tr(currency.Money(cat.TotalFormatted)), "B", 1, "R", false, 0, "")
	pdf.Ln(1)

	for _, sub := range cat.Subcategories {
		if name := sub.Attr("name"); name != "" {
			pdf.SetFont(pdfFont, "B", 11)
			pdf.SetTextColor(70, 70, 70)
			w.line(name)
			pdf.SetTextColor(0, 0, 0)
		}
		for i := range sub.Items {
			w.item(&sub.Items[i])
		}
	}
	pdf.Ln(3)
}

func (w *pdfWriter) item(item *model.Item) {
	pdf := w.pdf
	if name := item.Attr("name"); name != "" {
		pdf.SetFont(pdfFont, "B", 10)
		w.line(name)
	}
	pdf.SetFont(pdfFont, "", 10)
	if item.LongDescription != "" {
		w.line(item.LongDescription)
	}
	if item.InternalInstructions != "" {
		w.line("Instructions: " + item.InternalInstructions)
	}
	if item.InternalNotes != "" {
		w.line("Notes: " + item.InternalNotes)
	}
	pdf.Ln(2)
}
