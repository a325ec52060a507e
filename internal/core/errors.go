package core

import (
	"errors"
	"fmt"
)

var (
	// ErrJourneyAlreadyClosed is returned when all four punches of the day are filled.
	ErrJourneyAlreadyClosed = errors.New("journey already closed for today")
	// ErrPunchOutOfOrder rejects a punch earlier than the previous one (clock skew).
	ErrPunchOutOfOrder = errors.New("punch is earlier than the previous punch")
	// ErrPunchConflict means concurrent punches kept winning the race.
	ErrPunchConflict = errors.New("punch conflicted with a concurrent update")
	// ErrPersistence wraps every storage failure.
	ErrPersistence = errors.New("persistence failure")

	ErrForbidden     = errors.New("not allowed to access this data")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidFormat = errors.New("unsupported export format")
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, op, err)
}
