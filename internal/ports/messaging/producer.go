package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender        MessageSender
	emailQueueURL string
}

func NewProducer(sender MessageSender, emailQueueURL string) *Producer {
	return &Producer{
		sender:        sender,
		emailQueueURL: emailQueueURL,
	}
}

func NewSQSProducer(client SQSClient, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, emailQueueURL)
}

func (p *Producer) PublishEmail(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.emailQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with the event kind and user if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			Kind   string `json:"kind"`
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil {
			span.SetAttributes(attribute.String("app.event_kind", payload.Kind))
			if payload.UserID != "" {
				span.SetAttributes(attribute.String("app.user_id", payload.UserID))
			}
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
