package core

import (
	"sort"
	"time"

	"graficaos.service/internal/core/model"
)

// MetricsOptions carries what ComputeMetrics needs besides the records.
type MetricsOptions struct {
	// OnTime is the latest entrada still counted as punctual.
	OnTime model.TimeOfDay
	// Now is the reference for journeys still open.
	Now time.Time
	// Location is the civil timezone used to read entrada's time of day.
	Location *time.Location
}

// ComputeMetrics aggregates attendance, punctuality, streaks and hours over rng.
// It is a pure function of its inputs.
func ComputeMetrics(records []model.PunchRecord, rng model.DateRange, opts MetricsOptions) model.MetricsSnapshot {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	m := model.MetricsSnapshot{
		StartDate:       rng.Start.Format(model.DateLayout),
		EndDate:         rng.End.Format(model.DateLayout),
		BusinessDays:    BusinessDays(rng),
		OnTimeThreshold: opts.OnTime.String(),
		DailyHours:      []model.DailyHours{},
		WeeklyFrequency: []model.WeeklyFrequency{},
		HoursByUser:     []model.UserHours{},
	}

	threshold := opts.OnTime.Minutes()
	for _, r := range records {
		m.TotalMinutes += int(ElapsedDuration(r, opts.Now) / time.Minute)
		if r.AutoClosed {
			m.AutoClosedCount++
		}
		if r.Entrada == nil {
			continue
		}
		m.DaysWorked++
		e := r.Entrada.In(loc)
		if e.Hour()*60+e.Minute() <= threshold {
			m.PunctualDays++
		}
	}

	m.DaysAbsent = max(0, m.BusinessDays-m.DaysWorked)
	m.AttendancePercent = percent(m.DaysWorked, m.BusinessDays)
	m.PunctualityPercent = percent(m.PunctualDays, m.DaysWorked)
	if m.DaysWorked > 0 {
		m.AverageMinutes = m.TotalMinutes / m.DaysWorked
	}
	m.TotalHours = FormatDuration(time.Duration(m.TotalMinutes) * time.Minute)
	m.AverageHours = FormatDuration(time.Duration(m.AverageMinutes) * time.Minute)

	m.CurrentStreak, m.LongestStreak = Streaks(records)
	m.DailyHours = dailyHours(records, opts.Now)
	m.WeeklyFrequency = WeeklyFrequency(records)
	m.HoursByUser = hoursByUser(records)

	return m
}

// BusinessDays counts Monday to Friday dates in the inclusive range.
func BusinessDays(rng model.DateRange) int {
	total := rng.Len()
	n := total / 7 * 5
	for i := total / 7 * 7; i < total; i++ {
		if wd := rng.Start.AddDate(0, 0, i).Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// percent is round-half-up of num/den*100 clamped to [0, 100]; 0 when den is 0.
func percent(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	p := (num*200 + den) / (2 * den)
	return min(p, 100)
}

// Streaks walks records from the most recent date. current counts the leading
// run of records with entrada; longest is the longest run anywhere. Only a
// record with a nil entrada breaks a run: dates without a record are not seen.
func Streaks(records []model.PunchRecord) (current, longest int) {
	sorted := make([]model.PunchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	run := 0
	leading := true
	for _, r := range sorted {
		if r.Entrada == nil {
			run = 0
			leading = false
			continue
		}
		run++
		if leading {
			current++
		}
		longest = max(longest, run)
	}
	return current, longest
}

// WeekStart returns the Monday of the ISO week containing date.
func WeekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

// WeeklyFrequency buckets records by ISO week, oldest week first.
func WeeklyFrequency(records []model.PunchRecord) []model.WeeklyFrequency {
	buckets := make(map[time.Time]*model.WeeklyFrequency)
	var weeks []time.Time
	for _, r := range records {
		ws := WeekStart(r.Date)
		b, ok := buckets[ws]
		if !ok {
			b = &model.WeeklyFrequency{
				Week:      ws.Format("02/01"),
				WeekStart: ws.Format(model.DateLayout),
			}
			buckets[ws] = b
			weeks = append(weeks, ws)
		}
		b.Total++
		if r.Entrada != nil {
			b.Present++
		}
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	out := make([]model.WeeklyFrequency, 0, len(weeks))
	for _, ws := range weeks {
		out = append(out, *buckets[ws])
	}
	return out
}

func dailyHours(records []model.PunchRecord, now time.Time) []model.DailyHours {
	minutes := make(map[time.Time]int)
	var dates []time.Time
	for _, r := range records {
		if _, ok := minutes[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		minutes[r.Date] += int(ElapsedDuration(r, now) / time.Minute)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := make([]model.DailyHours, 0, len(dates))
	for _, d := range dates {
		out = append(out, model.DailyHours{
			Date:    d.Format(model.DateLayout),
			Minutes: minutes[d],
			Hours:   FormatDuration(time.Duration(minutes[d]) * time.Minute),
		})
	}
	return out
}

// hoursByUser ranks users by closed journeys only; a journey in progress
// has no worked hours yet.
func hoursByUser(records []model.PunchRecord) []model.UserHours {
	byUser := make(map[string]*model.UserHours)
	for _, r := range records {
		d, ok := WorkedDuration(r)
		if !ok {
			continue
		}
		u, ok := byUser[r.UserID]
		if !ok {
			name := r.UserName()
			if name == "" {
				name = r.UserID
			}
			u = &model.UserHours{UserID: r.UserID, Name: name}
			byUser[r.UserID] = u
		}
		u.Minutes += int(max(d, 0) / time.Minute)
	}

	out := make([]model.UserHours, 0, len(byUser))
	for _, u := range byUser {
		u.Hours = FormatDuration(time.Duration(u.Minutes) * time.Minute)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Name < out[j].Name
	})
	return out
}
