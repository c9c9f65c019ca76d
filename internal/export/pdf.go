package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// TablePDF renders t as a titled table. Tables wider than six columns use
// landscape pages.
func TablePDF(t Table) ([]byte, error) {
	orientation := "P"
	if len(t.Headers) > 6 {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(max(len(t.Headers), 1))

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(0, 123, 255)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, 8, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+7 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colW, 7, tr(fit(pdf, cell, colW)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// DetailPDF renders a two-column Field/Details grid under a heading.
func DetailPDF(title string, rows [][2]string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(60, 9, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, 9, "Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range rows {
		pdf.CellFormat(60, 9, tr(r[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 9, tr(r[1]), "1", 1, "L", false, 0, "")
	}

	return output(pdf)
}

// fit truncates s with an ellipsis so it fits a cell of width w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= w-pad {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w-pad {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
