package model

import (
	"time"
)

// Role defines what a user is allowed to see in reports.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Slot identifies one of the four daily punches.
type Slot int

const (
	SlotEntrada Slot = iota
	SlotAlmoco
	SlotRetorno
	SlotSaida
)

// Slots lists the punches in the order they must be filled.
var Slots = []Slot{SlotEntrada, SlotAlmoco, SlotRetorno, SlotSaida}

// Column is the punches table column backing the slot.
func (s Slot) Column() string {
	switch s {
	case SlotEntrada:
		return "entrada"
	case SlotAlmoco:
		return "almoco"
	case SlotRetorno:
		return "retorno"
	case SlotSaida:
		return "saida"
	}
	return ""
}

func (s Slot) String() string {
	return s.Column()
}

// UserSummary is the subset of a user embedded in punch records.
type UserSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Initials    string `json:"initials"`
	AvatarColor string `json:"avatarColor"`
}

type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Initials    string `json:"initials"`
	AvatarColor string `json:"avatarColor"`
	Active      bool   `json:"active"`
}

// PunchRecord is one user's journey on one civil day.
// Date carries no time of day: it is midnight UTC of the civil date.
type PunchRecord struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	User       *UserSummary `json:"user,omitempty"`
	Date       time.Time    `json:"date"`
	Entrada    *time.Time   `json:"entrada"`
	Almoco     *time.Time   `json:"almoco"`
	Retorno    *time.Time   `json:"retorno"`
	Saida      *time.Time   `json:"saida"`
	AutoClosed bool         `json:"autoClosed"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// SlotTime returns the timestamp stored in the given slot.
func (r *PunchRecord) SlotTime(s Slot) *time.Time {
	switch s {
	case SlotEntrada:
		return r.Entrada
	case SlotAlmoco:
		return r.Almoco
	case SlotRetorno:
		return r.Retorno
	case SlotSaida:
		return r.Saida
	}
	return nil
}

// SetSlot stores t in the given slot.
func (r *PunchRecord) SetSlot(s Slot, t time.Time) {
	switch s {
	case SlotEntrada:
		r.Entrada = &t
	case SlotAlmoco:
		r.Almoco = &t
	case SlotRetorno:
		r.Retorno = &t
	case SlotSaida:
		r.Saida = &t
	}
}

// NextSlot returns the first empty slot. ok is false once saida is filled.
func (r *PunchRecord) NextSlot() (slot Slot, ok bool) {
	for _, s := range Slots {
		if r.SlotTime(s) == nil {
			return s, true
		}
	}
	return SlotSaida, false
}

// LastPunch returns the latest filled slot timestamp, nil on an empty record.
func (r *PunchRecord) LastPunch() *time.Time {
	var last *time.Time
	for _, s := range Slots {
		if t := r.SlotTime(s); t != nil {
			last = t
		}
	}
	return last
}

// UserName is the embedded user's name, empty when the user was not joined.
func (r *PunchRecord) UserName() string {
	if r.User == nil {
		return ""
	}
	return r.User.Name
}

// RecordFilter selects records for reports. An empty UserID means all users.
type RecordFilter struct {
	UserID string
	Range  DateRange
}

// ReportRecord is a punch record with its formatted worked hours.
type ReportRecord struct {
	PunchRecord
	HorasTrabalhadas *string `json:"horasTrabalhadas"`
}

// DailyHours is the sum of elapsed minutes on one civil date.
type DailyHours struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
	Hours   string `json:"hours"`
}

// WeeklyFrequency counts records of one ISO week.
type WeeklyFrequency struct {
	Week      string `json:"semana"`
	WeekStart string `json:"weekStart"`
	Present   int    `json:"presencas"`
	Total     int    `json:"total"`
}

// UserHours is the total elapsed time of one user in the range.
type UserHours struct {
	UserID  string `json:"userId"`
	Name    string `json:"nome"`
	Minutes int    `json:"minutes"`
	Hours   string `json:"horas"`
}

// MetricsSnapshot is computed on demand and never persisted.
type MetricsSnapshot struct {
	StartDate          string            `json:"startDate"`
	EndDate            string            `json:"endDate"`
	BusinessDays       int               `json:"diasUteis"`
	DaysWorked         int               `json:"diasTrabalhados"`
	DaysAbsent         int               `json:"faltas"`
	AttendancePercent  int               `json:"percentualPresenca"`
	TotalMinutes       int               `json:"totalMinutos"`
	TotalHours         string            `json:"totalHorasTrabalhadas"`
	AverageMinutes     int               `json:"mediaMinutosDia"`
	AverageHours       string            `json:"mediaHorasDia"`
	PunctualDays       int               `json:"diasPontuais"`
	PunctualityPercent int               `json:"percentualPontualidade"`
	OnTimeThreshold    string            `json:"horarioPontual"`
	CurrentStreak      int               `json:"sequenciaAtual"`
	LongestStreak      int               `json:"maiorSequencia"`
	AutoClosedCount    int               `json:"encerramentosAutomaticos"`
	DailyHours         []DailyHours      `json:"horasPorDia"`
	WeeklyFrequency    []WeeklyFrequency `json:"frequenciaSemanal"`
	HoursByUser        []UserHours       `json:"horasPorUsuario"`
}

// ExportStatus labels how far a journey got.
type ExportStatus string

const (
	StatusComplete ExportStatus = "Complete"
	StatusPartial  ExportStatus = "Partial"
	StatusAbsent   ExportStatus = "Absent"
)

// ExportRow is the renderer-agnostic shape of one record.
type ExportRow struct {
	UserName   string       `json:"userName"`
	Date       string       `json:"date"`
	Entrada    string       `json:"entrada"`
	Almoco     string       `json:"almoco"`
	Retorno    string       `json:"retorno"`
	Saida      string       `json:"saida"`
	Worked     string       `json:"worked"`
	Status     ExportStatus `json:"status"`
	AutoClosed string       `json:"autoClosed"`
}

// Cells returns the row values in column order.
func (r ExportRow) Cells() []string {
	return []string{r.UserName, r.Date, r.Entrada, r.Almoco, r.Retorno, r.Saida, r.Worked, string(r.Status), r.AutoClosed}
}

// ExportHeader names the ExportRow columns.
var ExportHeader = []string{"User", "Date", "Entrada", "Almoço", "Retorno", "Saída", "Worked", "Status", "Auto-closed"}

// ClosedUser is reported for every record the sweep closed.
type ClosedUser struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Entrada *time.Time `json:"entrada"`
}

// SweepResult describes one auto-close run.
type SweepResult struct {
	Date     time.Time    `json:"date"`
	ClosedAt time.Time    `json:"closedAt"`
	Count    int          `json:"encerrados"`
	Users    []ClosedUser `json:"usuarios"`
}
