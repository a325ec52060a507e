package core

import (
	"testing"

	"graficaos.service/internal/core/model"
)

func TestToExportRows_Statuses(t *testing.T) {
	records := []model.PunchRecord{
		worked("u1", 10, 8, 0),
		{UserID: "u1", Date: day(11), Entrada: ptr(civil(2025, 3, 11, 8, 0)), Almoco: ptr(civil(2025, 3, 11, 12, 0))},
		{UserID: "u1", Date: day(12)},
		{UserID: "u1", Date: day(13), Entrada: ptr(civil(2025, 3, 13, 9, 0)), Saida: ptr(civil(2025, 3, 13, 22, 0)), AutoClosed: true},
	}

	rows := ToExportRows(records, brt)
	if len(rows) != len(records) {
		t.Fatalf("expected one row per record, got %d", len(rows))
	}

	for i, r := range records {
		want := model.StatusAbsent
		switch {
		case r.Saida != nil:
			want = model.StatusComplete
		case r.Entrada != nil:
			want = model.StatusPartial
		}
		if rows[i].Status != want {
			t.Errorf("row %d: expected %s, got %s", i, want, rows[i].Status)
		}
	}
}

func TestToExportRows_Cells(t *testing.T) {
	r := worked("u1", 10, 8, 5)
	r.User = &model.UserSummary{ID: "u1", Name: "Ana Souza"}
	open := model.PunchRecord{UserID: "u1", Date: day(11), Entrada: ptr(civil(2025, 3, 11, 8, 0)), AutoClosed: false}
	closed := model.PunchRecord{UserID: "u1", Date: day(12), Entrada: ptr(civil(2025, 3, 12, 9, 0)), Saida: ptr(civil(2025, 3, 12, 22, 0)), AutoClosed: true}

	rows := ToExportRows([]model.PunchRecord{r, open, closed}, brt)

	want := []string{"Ana Souza", "10/03/2025", "08:05", "12:00", "13:00", "17:00", "7h55m", "Complete", "No"}
	for i, c := range rows[0].Cells() {
		if c != want[i] {
			t.Errorf("column %s: expected %q, got %q", model.ExportHeader[i], want[i], c)
		}
	}

	if rows[1].Almoco != Placeholder || rows[1].Saida != Placeholder || rows[1].Worked != Placeholder {
		t.Errorf("empty cells should hold the placeholder, got %+v", rows[1])
	}
	if rows[2].AutoClosed != "Yes" || rows[2].Worked != "13h00m" {
		t.Errorf("unexpected auto-closed row %+v", rows[2])
	}
}

func TestToExportRows_TimesInCivilZone(t *testing.T) {
	// 11:00 UTC is 08:00 in UTC-3.
	r := model.PunchRecord{UserID: "u1", Date: day(10), Entrada: ptr(civil(2025, 3, 10, 8, 0).UTC())}

	rows := ToExportRows([]model.PunchRecord{r}, brt)
	if rows[0].Entrada != "08:00" {
		t.Errorf("expected 08:00, got %s", rows[0].Entrada)
	}
}
