package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"graficaos.service/internal/core"
	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/messaging"
	"graficaos.service/internal/report"
	"graficaos.service/internal/worker"
	"graficaos.service/pkg/telemetry"
)

// MaxReceives is how many deliveries a message gets before it is dropped.
const MaxReceives = 5

// ReportExporter renders the document attached to a report email.
type ReportExporter interface {
	Export(ctx context.Context, filter model.RecordFilter, format string) (report.Document, error)
}

// EmailProcessor handles jobs from the email queue. SES calls go through a
// circuit breaker so a failing SES is not hammered by every worker.
type EmailProcessor struct {
	emailService core.EmailService
	reports      ReportExporter
	cb           *gobreaker.CircuitBreaker
}

func NewProcessor(emailService core.EmailService, reports ReportExporter) *EmailProcessor {
	settings := gobreaker.Settings{
		Name:        "SES",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &EmailProcessor{
		emailService: emailService,
		reports:      reports,
		cb:           gobreaker.NewCircuitBreaker(settings),
	}
}

// Process routes the message on its kind.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	body := []byte(aws.ToString(msg.Body))

	var env messaging.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal email event")
		return false, 0, err
	}

	receives := worker.ReceiveCount(msg)
	if receives > MaxReceives {
		return false, 0, fmt.Errorf("giving up on %s message after %d receives", env.Kind, receives-1)
	}

	var err error
	switch env.Kind {
	case messaging.KindReportEmail:
		err = p.handleReport(ctx, body)
	case messaging.KindAutoClosed:
		err = p.handleAutoClosed(ctx, body)
	default:
		return false, 0, fmt.Errorf("unknown event kind %q", env.Kind)
	}

	if err == nil {
		return false, 0, nil
	}
	if errors.Is(err, errMalformed) || errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrInvalidFormat) {
		return false, 0, err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; deferring email")
	}
	return true, calculateBackoff(receives), err
}

var errMalformed = errors.New("malformed event")

func (p *EmailProcessor) handleReport(ctx context.Context, body []byte) error {
	var event messaging.ReportEmailEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}

	rng, err := core.ParseRange(event.StartDate, event.EndDate)
	if err != nil {
		return err
	}
	ctx = telemetry.ContextWithUserID(ctx, event.RequestedBy)

	doc, err := p.reports.Export(ctx, model.RecordFilter{UserID: event.UserID, Range: rng}, event.Format)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.emailService.SendReport(ctx, event.Recipient, doc)
	})
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	log.Ctx(ctx).Info().Str("recipient", event.Recipient).Str("file", doc.Filename).Msg("Report email sent")
	return nil
}

func (p *EmailProcessor) handleAutoClosed(ctx context.Context, body []byte) error {
	var event messaging.AutoClosedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}
	if event.Email == "" {
		log.Ctx(ctx).Info().Str("user_id", event.UserID).Msg("User has no email, skipping auto-close notice")
		return nil
	}
	ctx = telemetry.ContextWithUserID(ctx, event.UserID)

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.emailService.SendAutoCloseNotice(ctx, event.Email, event.Name, event.Entrada, event.ClosedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to send auto-close notice: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", event.UserID).Str("date", event.Date).Msg("Auto-close notice sent")
	return nil
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
