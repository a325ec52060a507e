package messaging

import "time"

// EventKind tells the email worker how to handle a message body.
type EventKind string

const (
	KindReportEmail EventKind = "REPORT_EMAIL"
	KindAutoClosed  EventKind = "AUTO_CLOSED"
)

// Envelope is decoded first to route a message to its handler.
type Envelope struct {
	Kind EventKind `json:"kind"`
}

// ReportEmailEvent asks the email worker to render and mail a report.
// UserID is empty for an all-users report.
type ReportEmailEvent struct {
	Kind        EventKind `json:"kind"`
	RequestedBy string    `json:"requestedBy"`
	UserID      string    `json:"userId,omitempty"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Recipient   string    `json:"recipient"`
	Format      string    `json:"format"`
	RequestedAt time.Time `json:"requestedAt"`
}

// AutoClosedEvent is published for each record the sweep closed.
type AutoClosedEvent struct {
	Kind     EventKind `json:"kind"`
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Date     string    `json:"date"`
	Entrada  time.Time `json:"entrada"`
	ClosedAt time.Time `json:"closedAt"`
}
