package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"graficaos.service/internal/core/model"
)

// SheetName is the worksheet holding the punch table.
const SheetName = "Pontos"

// headerRow is where the column titles go; data starts right below.
const headerRow = 4

var columnWidths = []float64{28, 12, 10, 10, 10, 10, 10, 12, 12}

type XLSXRenderer struct{}

func (XLSXRenderer) Extension() string { return "xlsx" }
func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Render(rows []model.ExportRow, meta Meta) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	f.SetCellValue(SheetName, "A1", meta.Title+" — "+meta.Subject)
	f.SetCellValue(SheetName, "A2", "Período: "+meta.Period())

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, cell(1, headerRow), &model.ExportHeader); err != nil {
		return nil, err
	}
	f.SetCellStyle(SheetName, cell(1, headerRow), cell(len(model.ExportHeader), headerRow), headerStyle)

	for i, row := range rows {
		cells := row.Cells()
		if err := f.SetSheetRow(SheetName, cell(1, headerRow+1+i), &cells); err != nil {
			return nil, err
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
