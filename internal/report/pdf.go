package report

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"graficaos.service/internal/core/model"
)

// pdfColumnWidths in mm; they fill a landscape A4 page minus margins.
var pdfColumnWidths = []float64{62, 26, 22, 22, 22, 22, 25, 28, 28}

type PDFRenderer struct{}

func (PDFRenderer) Extension() string   { return "pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Render(rows []model.ExportRow, meta Meta) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	// Core fonts are cp1252: accents and the em-dash placeholder need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor("GráficaOS", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(meta.Title+" — "+meta.Subject), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Período: "+meta.Period()), "", 1, "L", false, 0, "")
	if !meta.GeneratedAt.IsZero() {
		pdf.CellFormat(0, 6, tr("Gerado em "+meta.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range model.ExportHeader {
		pdf.CellFormat(pdfColumnWidths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(235, 240, 250)
	for i, row := range rows {
		fill := i%2 == 1
		for j, v := range row.Cells() {
			align := "C"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(pdfColumnWidths[j], 6, tr(v), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(0, 8, tr("Nenhum registro no período."), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
