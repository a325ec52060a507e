package core

import (
	"fmt"
	"time"

	"graficaos.service/internal/core/model"
)

// WorkedDuration is (saida - entrada) - (retorno - almoco).
// ok is false until both entrada and saida are set.
func WorkedDuration(r model.PunchRecord) (d time.Duration, ok bool) {
	if r.Entrada == nil || r.Saida == nil {
		return 0, false
	}

	d = r.Saida.Sub(*r.Entrada)
	if r.Almoco != nil && r.Retorno != nil {
		d -= r.Retorno.Sub(*r.Almoco)
	}
	return d, true
}

// ElapsedDuration is WorkedDuration for a journey still in progress: a missing
// saida runs until now, and so does a lunch without retorno. A closed journey
// counts exactly as WorkedDuration. Never negative.
func ElapsedDuration(r model.PunchRecord, now time.Time) time.Duration {
	if r.Entrada == nil {
		return 0
	}
	if d, ok := WorkedDuration(r); ok {
		return max(d, 0)
	}

	d := now.Sub(*r.Entrada)
	if r.Almoco != nil {
		lunchEnd := now
		if r.Retorno != nil {
			lunchEnd = *r.Retorno
		}
		if lunch := lunchEnd.Sub(*r.Almoco); lunch > 0 {
			d -= lunch
		}
	}
	return max(d, 0)
}

// FormatDuration renders whole hours and minutes, e.g. "8h05m".
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%s%dh%02dm", sign, total/60, total%60)
}

// WorkedHoursLabel is the formatted worked duration, nil when not computable.
func WorkedHoursLabel(r model.PunchRecord) *string {
	d, ok := WorkedDuration(r)
	if !ok {
		return nil
	}
	s := FormatDuration(d)
	return &s
}
