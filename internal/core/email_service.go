package core

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"graficaos.service/internal/report"
	"graficaos.service/pkg/telemetry"
)

type EmailService interface {
	SendReport(ctx context.Context, to string, doc report.Document) error
	SendAutoCloseNotice(ctx context.Context, to, name string, entrada, closedAt time.Time) error
}

// SESClient is the part of the SES API the email service uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
	loc    *time.Location
}

// NewSESEmailService sends from sender and prints times in loc.
func NewSESEmailService(client SESClient, sender string, loc *time.Location) *SESEmailService {
	return &SESEmailService{client: client, sender: sender, loc: loc}
}

// SendReport mails a rendered report as an attachment.
func (s *SESEmailService) SendReport(ctx context.Context, to string, doc report.Document) error {
	meta := doc.Meta
	ctx, span := s.startSpan(ctx, "send_report_email")
	defer span.End()
	span.SetAttributes(attribute.String("app.report_file", doc.Filename))

	subject := fmt.Sprintf("%s — %s (%s)", meta.Title, meta.Subject, meta.Period())
	body := fmt.Sprintf("Olá,\n\nSegue em anexo o relatório de ponto de %s referente ao período %s.\n\nGráficaOS", meta.Subject, meta.Period())

	raw, err := buildRawMessage(s.sender, to, subject, body, doc)
	if err != nil {
		return fmt.Errorf("failed to build report email: %w", err)
	}

	_, err = s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Destinations: []string{to},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	return err
}

// SendAutoCloseNotice tells a user their journey was closed by the sweep.
func (s *SESEmailService) SendAutoCloseNotice(ctx context.Context, to, name string, entrada, closedAt time.Time) error {
	ctx, span := s.startSpan(ctx, "send_autoclose_email")
	defer span.End()

	text := fmt.Sprintf(
		"Olá, %s.\n\nSeu ponto de %s (entrada às %s) não tinha saída registrada e foi encerrado automaticamente às %s.\nProcure o administrador se precisar de ajuste.",
		name, entrada.In(s.loc).Format("02/01/2006"), entrada.In(s.loc).Format("15:04"), closedAt.In(s.loc).Format("15:04"),
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Ponto encerrado automaticamente"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

func (s *SESEmailService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))

	if userID := telemetry.GetUserIDFromContext(ctx); userID != "" {
		span.SetAttributes(attribute.String("app.user_id", userID))
	}
	return ctx, span
}

// buildRawMessage assembles a multipart/mixed message with a text part and
// one base64 attachment.
func buildRawMessage(from, to, subject, body string, att report.Document) ([]byte, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	toAddr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", fromAddr.String())
	fmt.Fprintf(&buf, "To: %s\r\n", toAddr.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(text, []byte(body)); err != nil {
		return nil, err
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {att.ContentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(part, att.Body); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 writes data base64-encoded in 76-column lines.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}
