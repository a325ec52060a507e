package core

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/repository"
)

// SweepService force-closes journeys left open at the end of the day.
type SweepService struct {
	repo      repository.PunchRepository
	clock     *CivilClock
	closeHour int
}

func NewSweepService(repo repository.PunchRepository, clock *CivilClock, closeHour int) *SweepService {
	return &SweepService{repo: repo, clock: clock, closeHour: closeHour}
}

// Run closes today's open records at closeHour:00 civil time.
// A second run on the same day finds nothing left to close.
func (s *SweepService) Run(ctx context.Context) (model.SweepResult, error) {
	return s.CloseDay(ctx, s.clock.Today())
}

// CloseDay closes the open records of a given civil date. Any persistence error
// aborts the whole run.
func (s *SweepService) CloseDay(ctx context.Context, date time.Time) (model.SweepResult, error) {
	closeAt := s.clock.At(date, s.closeHour, 0)
	result := model.SweepResult{Date: date, ClosedAt: closeAt, Users: []model.ClosedUser{}}

	open, err := s.repo.FindOpenByDate(ctx, date)
	if err != nil {
		return result, persistenceError("query open punches", err)
	}

	ids := make([]string, 0, len(open))
	candidates := make(map[string]model.ClosedUser, len(open))
	for _, rec := range open {
		// Any punch after the cutoff would end up later than saida.
		if last := rec.LastPunch(); last.After(closeAt) {
			log.Ctx(ctx).Warn().Str("user_id", rec.UserID).Time("last_punch", *last).Msg("Punch after cutoff, leaving record open")
			continue
		}
		ids = append(ids, rec.ID)
		user := model.ClosedUser{ID: rec.UserID, Entrada: rec.Entrada}
		if rec.User != nil {
			user.Name, user.Email = rec.User.Name, rec.User.Email
		}
		candidates[rec.ID] = user
	}

	if len(ids) == 0 {
		log.Ctx(ctx).Info().Str("date", date.Format(model.DateLayout)).Msg("No open punches to close")
		return result, nil
	}

	closed, err := s.repo.AutoClose(ctx, ids, closeAt)
	if err != nil {
		return result, persistenceError("auto-close punches", err)
	}

	// A record punched out between the query and the update is not reported.
	for _, id := range ids {
		if slices.Contains(closed, id) {
			result.Users = append(result.Users, candidates[id])
		}
	}
	result.Count = len(result.Users)

	log.Ctx(ctx).Info().Int("closed", result.Count).Time("closed_at", closeAt).Msg("Open punches closed automatically")
	return result, nil
}
