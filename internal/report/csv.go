package report

import (
	"bytes"
	"encoding/csv"

	"graficaos.service/internal/core/model"
)

// utf8BOM makes spreadsheet apps detect UTF-8 in the CSV.
const utf8BOM = "\ufeff"

type CSVRenderer struct{}

func (CSVRenderer) Extension() string   { return "csv" }
func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVRenderer) Render(rows []model.ExportRow, _ Meta) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(model.ExportHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.Cells()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
