package service

import (
	"time"

	"livestream-api/core/errors"
	"livestream-api/modules/livestream/dto"
)

// TermValidator checks a requested window against the bookable horizon.
// It does no I/O.
type TermValidator struct {
	termStart int64
	termEnd   int64
}

func NewTermValidator(termStart, termEnd time.Time) *TermValidator {
	return &TermValidator{termStart: termStart.Unix(), termEnd: termEnd.Unix()}
}

func (v *TermValidator) Term() dto.Interval {
	return dto.Interval{StartAt: v.termStart, EndAt: v.termEnd}
}

func (v *TermValidator) Validate(startAt, endAt int64) *errors.AppError {
	requested := dto.Interval{StartAt: startAt, EndAt: endAt}

	if startAt >= endAt {
		return errors.NewAppError(errors.ErrInvalidReservationInterval,
			"start_at must be before end_at", nil).
			WithDetails(requested)
	}
	if startAt >= v.termEnd || endAt <= v.termStart {
		return errors.NewAppError(errors.ErrReservationOutOfTerm,
			"reservation window is outside the bookable term", nil).
			WithDetails(dto.OutOfTermDetails{Requested: requested, Term: v.Term()})
	}
	return nil
}
