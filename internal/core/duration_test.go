package core

import (
	"testing"
	"time"

	"graficaos.service/internal/core/model"
)

func TestWorkedDuration_WithLunch(t *testing.T) {
	r := model.PunchRecord{
		Entrada: ptr(civil(2025, 3, 10, 8, 0)),
		Almoco:  ptr(civil(2025, 3, 10, 12, 0)),
		Retorno: ptr(civil(2025, 3, 10, 13, 0)),
		Saida:   ptr(civil(2025, 3, 10, 17, 30)),
	}

	d, ok := WorkedDuration(r)
	if !ok {
		t.Fatal("expected duration to be computable")
	}
	if got := FormatDuration(d); got != "8h30m" {
		t.Errorf("expected 8h30m, got %s", got)
	}

	r.Almoco, r.Retorno = nil, nil
	d, _ = WorkedDuration(r)
	if got := FormatDuration(d); got != "9h30m" {
		t.Errorf("without lunch expected 9h30m, got %s", got)
	}
}

func TestWorkedDuration_LunchWithoutReturnIgnored(t *testing.T) {
	r := model.PunchRecord{
		Entrada: ptr(civil(2025, 3, 10, 8, 0)),
		Almoco:  ptr(civil(2025, 3, 10, 12, 0)),
		Saida:   ptr(civil(2025, 3, 10, 17, 0)),
	}

	d, _ := WorkedDuration(r)
	if d != 9*time.Hour {
		t.Errorf("expected 9h, got %v", d)
	}
}

func TestWorkedDuration_NotComputable(t *testing.T) {
	if _, ok := WorkedDuration(model.PunchRecord{Entrada: ptr(civil(2025, 3, 10, 8, 0))}); ok {
		t.Error("missing saida should not be computable")
	}
	if _, ok := WorkedDuration(model.PunchRecord{Saida: ptr(civil(2025, 3, 10, 17, 0))}); ok {
		t.Error("missing entrada should not be computable")
	}
	if WorkedHoursLabel(model.PunchRecord{}) != nil {
		t.Error("label of an empty record should be nil")
	}
}

func TestMondayScenario(t *testing.T) {
	monday := model.CivilDate(2025, 3, 10)
	r := model.PunchRecord{
		UserID:  "u1",
		Date:    monday,
		Entrada: ptr(civil(2025, 3, 10, 8, 10)),
		Almoco:  ptr(civil(2025, 3, 10, 12, 5)),
		Retorno: ptr(civil(2025, 3, 10, 13, 2)),
		Saida:   ptr(civil(2025, 3, 10, 17, 45)),
	}

	label := WorkedHoursLabel(r)
	if label == nil || *label != "8h38m" {
		t.Fatalf("expected 8h38m, got %v", label)
	}

	m := ComputeMetrics([]model.PunchRecord{r}, model.DateRange{Start: monday, End: monday}, MetricsOptions{
		OnTime:   model.TimeOfDay{Hour: 8, Minute: 15},
		Now:      civil(2025, 3, 10, 20, 0),
		Location: brt,
	})
	if m.PunctualDays != 1 || m.PunctualityPercent != 100 {
		t.Errorf("expected the day to be punctual, got %d days / %d%%", m.PunctualDays, m.PunctualityPercent)
	}
	if m.TotalHours != "8h38m" {
		t.Errorf("expected total 8h38m, got %s", m.TotalHours)
	}
}

func TestElapsedDuration_OpenJourney(t *testing.T) {
	now := civil(2025, 3, 10, 15, 0)

	r := model.PunchRecord{
		Entrada: ptr(civil(2025, 3, 10, 8, 0)),
		Almoco:  ptr(civil(2025, 3, 10, 12, 0)),
		Retorno: ptr(civil(2025, 3, 10, 13, 0)),
	}
	if got := ElapsedDuration(r, now); got != 6*time.Hour {
		t.Errorf("expected 6h so far, got %v", got)
	}

	// At lunch: the clock stops at almoco.
	r.Retorno = nil
	if got := ElapsedDuration(r, now); got != 4*time.Hour {
		t.Errorf("expected 4h while at lunch, got %v", got)
	}

	if got := ElapsedDuration(model.PunchRecord{}, now); got != 0 {
		t.Errorf("expected 0 without entrada, got %v", got)
	}
}

func TestElapsedDuration_NeverNegative(t *testing.T) {
	r := model.PunchRecord{
		Entrada: ptr(civil(2025, 3, 10, 18, 0)),
		Saida:   ptr(civil(2025, 3, 10, 17, 0)),
	}
	if got := ElapsedDuration(r, civil(2025, 3, 10, 19, 0)); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

// A journey auto-closed during lunch keeps the whole span, as in the export.
func TestElapsedDuration_ClosedDuringLunch(t *testing.T) {
	r := model.PunchRecord{
		Entrada: ptr(civil(2025, 3, 10, 9, 0)),
		Almoco:  ptr(civil(2025, 3, 10, 12, 0)),
		Saida:   ptr(civil(2025, 3, 10, 22, 0)),
	}

	worked, ok := WorkedDuration(r)
	if !ok || worked != 13*time.Hour {
		t.Fatalf("expected 13h worked, got %v (%v)", worked, ok)
	}
	if got := ElapsedDuration(r, civil(2025, 3, 11, 10, 0)); got != worked {
		t.Errorf("elapsed should match worked for a closed journey, got %v want %v", got, worked)
	}

	m := ComputeMetrics([]model.PunchRecord{{UserID: "u1", Date: day(10), Entrada: r.Entrada, Almoco: r.Almoco, Saida: r.Saida}},
		model.DateRange{Start: day(10), End: day(10)}, testOptions())
	if m.TotalHours != "13h00m" {
		t.Errorf("metrics total should agree with the export, got %s", m.TotalHours)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0h00m"},
		{5 * time.Minute, "0h05m"},
		{8*time.Hour + 5*time.Minute + 59*time.Second, "8h05m"},
		{27 * time.Hour, "27h00m"},
		{-(90 * time.Minute), "-1h30m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
