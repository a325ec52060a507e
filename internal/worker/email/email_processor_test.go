package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"graficaos.service/internal/core"
	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/messaging"
	"graficaos.service/internal/report"
)

// ── Mocks ──

type mockEmailService struct {
	reports []string
	notices []string
	err     error
}

func (m *mockEmailService) SendReport(_ context.Context, to string, doc report.Document) error {
	m.reports = append(m.reports, to+":"+doc.Filename)
	return m.err
}

func (m *mockEmailService) SendAutoCloseNotice(_ context.Context, to, name string, _, _ time.Time) error {
	m.notices = append(m.notices, to+":"+name)
	return m.err
}

type mockExporter struct {
	filters []model.RecordFilter
	formats []string
	err     error
}

func (m *mockExporter) Export(_ context.Context, filter model.RecordFilter, format string) (report.Document, error) {
	m.filters = append(m.filters, filter)
	m.formats = append(m.formats, format)
	if m.err != nil {
		return report.Document{}, m.err
	}
	return report.Document{Filename: "pontos." + format}, nil
}

func sqsMessage(t *testing.T, body any, receives int) types.Message {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return types.Message{
		MessageId:  aws.String("m-1"),
		Body:       aws.String(string(b)),
		Attributes: map[string]string{"ApproximateReceiveCount": fmt.Sprint(receives)},
	}
}

func reportEvent() messaging.ReportEmailEvent {
	return messaging.ReportEmailEvent{
		Kind:        messaging.KindReportEmail,
		RequestedBy: "admin-1",
		UserID:      "u1",
		StartDate:   "2025-03-01",
		EndDate:     "2025-03-31",
		Recipient:   "rh@graficaos.com",
		Format:      "xlsx",
	}
}

// ── Tests ──

func TestEmailProcessor_ReportEmail(t *testing.T) {
	emails := &mockEmailService{}
	exporter := &mockExporter{}
	p := NewProcessor(emails, exporter)

	retry, _, err := p.Process(context.Background(), sqsMessage(t, reportEvent(), 1))
	if err != nil || retry {
		t.Fatalf("expected success, got retry=%v err=%v", retry, err)
	}
	if len(exporter.filters) != 1 || exporter.filters[0].UserID != "u1" || exporter.formats[0] != "xlsx" {
		t.Errorf("unexpected export %+v %v", exporter.filters, exporter.formats)
	}
	if !exporter.filters[0].Range.Start.Equal(model.CivilDate(2025, 3, 1)) {
		t.Errorf("unexpected range %s", exporter.filters[0].Range)
	}
	if len(emails.reports) != 1 || emails.reports[0] != "rh@graficaos.com:pontos.xlsx" {
		t.Errorf("unexpected reports sent %v", emails.reports)
	}
}

func TestEmailProcessor_AutoClosedNotice(t *testing.T) {
	emails := &mockEmailService{}
	p := NewProcessor(emails, &mockExporter{})

	event := messaging.AutoClosedEvent{Kind: messaging.KindAutoClosed, UserID: "u1", Name: "Ana", Email: "ana@graficaos.com", Date: "2025-03-10"}
	if _, _, err := p.Process(context.Background(), sqsMessage(t, event, 1)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emails.notices) != 1 || emails.notices[0] != "ana@graficaos.com:Ana" {
		t.Errorf("unexpected notices %v", emails.notices)
	}

	event.Email = ""
	if _, _, err := p.Process(context.Background(), sqsMessage(t, event, 1)); err != nil {
		t.Errorf("users without email are skipped, got %v", err)
	}
	if len(emails.notices) != 1 {
		t.Error("no notice should go to a user without email")
	}
}

func TestEmailProcessor_NonRetryable(t *testing.T) {
	p := NewProcessor(&mockEmailService{}, &mockExporter{})

	bad := reportEvent()
	bad.StartDate = "01/03/2025"

	msgs := map[string]types.Message{
		"malformed":    {MessageId: aws.String("m"), Body: aws.String("{")},
		"unknown kind": sqsMessage(t, map[string]string{"kind": "SOMETHING"}, 1),
		"bad dates":    sqsMessage(t, bad, 1),
	}
	for name, msg := range msgs {
		retry, _, err := p.Process(context.Background(), msg)
		if err == nil || retry {
			t.Errorf("%s: expected a permanent failure, got retry=%v err=%v", name, retry, err)
		}
	}
}

func TestEmailProcessor_RetriesWithBackoff(t *testing.T) {
	p := NewProcessor(&mockEmailService{err: errors.New("ses throttled")}, &mockExporter{})

	retry, delay, err := p.Process(context.Background(), sqsMessage(t, reportEvent(), 2))
	if err == nil || !retry {
		t.Fatalf("expected a retry, got retry=%v err=%v", retry, err)
	}
	if delay != 40 {
		t.Errorf("expected 40s delay on the second receive, got %d", delay)
	}
}

func TestEmailProcessor_RenderFailureRetries(t *testing.T) {
	p := NewProcessor(&mockEmailService{}, &mockExporter{err: fmt.Errorf("%w: boom", core.ErrPersistence)})

	retry, _, err := p.Process(context.Background(), sqsMessage(t, reportEvent(), 1))
	if err == nil || !retry {
		t.Errorf("storage failures should be retried, got retry=%v err=%v", retry, err)
	}
}

func TestEmailProcessor_GivesUpAfterMaxReceives(t *testing.T) {
	emails := &mockEmailService{}
	p := NewProcessor(emails, &mockExporter{})

	retry, _, err := p.Process(context.Background(), sqsMessage(t, reportEvent(), MaxReceives+1))
	if err == nil || retry {
		t.Errorf("expected the message to be dropped, got retry=%v err=%v", retry, err)
	}
	if len(emails.reports) != 0 {
		t.Error("nothing should be sent")
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		retries int
		want    int32
	}{
		{1, 20},
		{3, 80},
		{20, 3600},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.retries); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %d, want %d", tt.retries, got, tt.want)
		}
	}
}
