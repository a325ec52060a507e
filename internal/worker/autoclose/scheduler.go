package autoclose

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler fires a job every day at a fixed civil hour.
type Scheduler struct {
	cron *cron.Cron
	spec string
}

// DailySpec is the cron expression for hour:00 every day.
func DailySpec(hour int) string {
	return fmt.Sprintf("0 %d * * *", hour)
}

func NewScheduler(job cron.Job, loc *time.Location, hour int) (*Scheduler, error) {
	l := cronLogger{logger: log.Logger.With().Str("component", "cron").Logger()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	spec := DailySpec(hour)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("failed to schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, spec: spec}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		log.Info().Str("spec", s.spec).Time("next", e.Next).Msg("Auto-close scheduled")
	}
}

// Stop prevents new runs and waits for a running sweep until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
