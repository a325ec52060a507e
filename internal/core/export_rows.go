package core

import (
	"time"

	"graficaos.service/internal/core/model"
)

// Placeholder marks an empty cell in exports.
const Placeholder = "—"

// ToExportRows shapes records into flat rows, one per record, in input order.
// Times are rendered in loc.
func ToExportRows(records []model.PunchRecord, loc *time.Location) []model.ExportRow {
	rows := make([]model.ExportRow, 0, len(records))
	for _, r := range records {
		row := model.ExportRow{
			UserName:   r.UserName(),
			Date:       r.Date.Format("02/01/2006"),
			Entrada:    clockCell(r.Entrada, loc),
			Almoco:     clockCell(r.Almoco, loc),
			Retorno:    clockCell(r.Retorno, loc),
			Saida:      clockCell(r.Saida, loc),
			Worked:     Placeholder,
			Status:     exportStatus(r),
			AutoClosed: "No",
		}
		if d, ok := WorkedDuration(r); ok {
			row.Worked = FormatDuration(d)
		}
		if r.AutoClosed {
			row.AutoClosed = "Yes"
		}
		rows = append(rows, row)
	}
	return rows
}

func exportStatus(r model.PunchRecord) model.ExportStatus {
	switch {
	case r.Saida != nil:
		return model.StatusComplete
	case r.Entrada != nil:
		return model.StatusPartial
	default:
		return model.StatusAbsent
	}
}

func clockCell(t *time.Time, loc *time.Location) string {
	if t == nil {
		return Placeholder
	}
	return t.In(loc).Format("15:04")
}
