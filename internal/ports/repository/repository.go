package repository

import (
	"context"
	"errors"
	"time"

	"graficaos.service/internal/core/model"
)

var (
	// ErrRecordNotFound is returned by lookups by id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned when (user_id, date) already exists.
	ErrDuplicateRecord = errors.New("record already exists")
)

// PunchRepository contract
type PunchRepository interface {
	// FindByUserAndDate returns nil, nil when the user has no record that day.
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.PunchRecord, error)
	GetByID(ctx context.Context, id string) (*model.PunchRecord, error)
	// Create fills rec.ID and timestamps. ErrDuplicateRecord on (user, date) clash.
	Create(ctx context.Context, rec *model.PunchRecord) error
	// SetSlot writes at into slot only while the slot is still empty.
	// It reports whether a row was updated.
	SetSlot(ctx context.Context, id string, slot model.Slot, at time.Time) (bool, error)
	FindOpenByDate(ctx context.Context, date time.Time) ([]model.PunchRecord, error)
	// AutoClose sets saida and auto_closed on the ids whose saida is still null
	// and returns the ids it actually closed.
	AutoClose(ctx context.Context, ids []string, saida time.Time) ([]string, error)
	// List returns records in the filter ordered by date ascending.
	List(ctx context.Context, filter model.RecordFilter) ([]model.PunchRecord, error)
	// ListRecent returns records of userID (all users when empty), newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]model.PunchRecord, error)
}

// UserRepository contract
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}
