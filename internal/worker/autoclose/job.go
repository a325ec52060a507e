// Package autoclose runs the end-of-day sweep on a schedule.
package autoclose

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/messaging"
	"graficaos.service/pkg/logger"
)

type Sweeper interface {
	Run(ctx context.Context) (model.SweepResult, error)
}

// Job runs one sweep and announces every closed journey on the email queue.
type Job struct {
	sweeper   Sweeper
	publisher messaging.EventPublisher
}

func NewJob(sweeper Sweeper, publisher messaging.EventPublisher) *Job {
	return &Job{sweeper: sweeper, publisher: publisher}
}

// Run satisfies cron.Job.
func (j *Job) Run() {
	if _, err := j.RunContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("Auto-close sweep failed")
	}
}

// RunContext sweeps today's open records. Notification failures are logged
// and never undo the sweep.
func (j *Job) RunContext(ctx context.Context) (model.SweepResult, error) {
	ctx, span := otel.Tracer("autoclose-worker").Start(ctx, "autoclose_sweep")
	defer span.End()
	ctx = logger.EnrichContextWithLogger(ctx)

	result, err := j.sweeper.Run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("failed to run sweep: %w", err)
	}
	span.SetAttributes(attribute.Int("app.closed_count", result.Count))

	date := result.Date.Format(model.DateLayout)
	for _, u := range result.Users {
		log.Ctx(ctx).Info().Str("user_id", u.ID).Str("name", u.Name).Str("date", date).Msg("Journey closed automatically")

		event := messaging.AutoClosedEvent{
			Kind:     messaging.KindAutoClosed,
			UserID:   u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Date:     date,
			ClosedAt: result.ClosedAt,
		}
		if u.Entrada != nil {
			event.Entrada = *u.Entrada
		}
		if err := j.publisher.PublishEmail(ctx, event); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("user_id", u.ID).Msg("Failed to publish auto-close notice")
		}
	}
	return result, nil
}
