package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/repository"
)

// maxPunchAttempts bounds the reload-and-retry loop when a concurrent punch
// for the same user wins a create or slot update.
const maxPunchAttempts = 3

// recentLimit caps the unfiltered punch listing.
const recentLimit = 200

type PunchService struct {
	repo  repository.PunchRepository
	clock *CivilClock
}

// NewPunchService wires the punch repository and the civil clock that decides
// which calendar day a punch belongs to.
func NewPunchService(repo repository.PunchRepository, clock *CivilClock) *PunchService {
	return &PunchService{
		repo:  repo,
		clock: clock,
	}
}

// RegisterPunch fills the next empty slot of the user's record for today,
// creating the record on the first punch of the day.
func (s *PunchService) RegisterPunch(ctx context.Context, userID string) (*model.PunchRecord, error) {
	now := s.clock.Now()
	today := s.clock.DateOf(now)
	logger := log.Ctx(ctx).With().Str("user_id", userID).Str("date", today.Format(model.DateLayout)).Logger()

	for attempt := 1; attempt <= maxPunchAttempts; attempt++ {
		rec, err := s.repo.FindByUserAndDate(ctx, userID, today)
		if err != nil {
			return nil, persistenceError("query today's punch", err)
		}

		if rec == nil {
			rec = &model.PunchRecord{UserID: userID, Date: today, Entrada: &now}
			err = s.repo.Create(ctx, rec)
			if errors.Is(err, repository.ErrDuplicateRecord) {
				logger.Debug().Int("attempt", attempt).Msg("Concurrent first punch, reloading")
				continue
			}
			if err != nil {
				return nil, persistenceError("create punch record", err)
			}
			logger.Info().Str("slot", model.SlotEntrada.String()).Msg("Punch registered")
			return s.load(ctx, rec.ID)
		}

		slot, ok := rec.NextSlot()
		if !ok {
			return nil, ErrJourneyAlreadyClosed
		}
		if last := rec.LastPunch(); last != nil && now.Before(*last) {
			logger.Warn().Time("last_punch", *last).Time("now", now).Msg("Rejected punch earlier than previous one")
			return nil, ErrPunchOutOfOrder
		}

		updated, err := s.repo.SetSlot(ctx, rec.ID, slot, now)
		if err != nil {
			return nil, persistenceError("update punch record", err)
		}
		if !updated {
			logger.Debug().Int("attempt", attempt).Str("slot", slot.String()).Msg("Slot taken concurrently, reloading")
			continue
		}

		logger.Info().Str("slot", slot.String()).Msg("Punch registered")
		return s.load(ctx, rec.ID)
	}

	return nil, ErrPunchConflict
}

// Today returns the user's record for the current civil day, nil before the
// first punch.
func (s *PunchService) Today(ctx context.Context, userID string) (*model.PunchRecord, error) {
	rec, err := s.repo.FindByUserAndDate(ctx, userID, s.clock.Today())
	if err != nil {
		return nil, persistenceError("query today's punch", err)
	}
	return rec, nil
}

// Get returns a record by id; repository.ErrRecordNotFound when missing.
func (s *PunchService) Get(ctx context.Context, id string) (*model.PunchRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, persistenceError("get punch record", err)
	}
	return rec, nil
}

// List returns the latest records of a user, or of everyone when userID is empty.
func (s *PunchService) List(ctx context.Context, userID string) ([]model.PunchRecord, error) {
	records, err := s.repo.ListRecent(ctx, userID, recentLimit)
	if err != nil {
		return nil, persistenceError("list punch records", err)
	}
	return records, nil
}

func (s *PunchService) load(ctx context.Context, id string) (*model.PunchRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError("reload punch record", err)
	}
	return rec, nil
}
