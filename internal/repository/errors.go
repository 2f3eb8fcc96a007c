package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/attendly/server/internal/model"
)

// SQLSTATE classes raised by the schema constraints.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Constraint names from the migrations; they pin each violation to a domain
// error.
const (
	constraintEventName        = "uq_events_name"
	constraintAttendeeEmail    = "uix_attendee_email_event"
	constraintCapacityExceeded = "check_capacity_not_exceeded"
)

// mapConstraintError translates PostgreSQL constraint violations into domain
// errors. Violations we cannot attribute keep the raw error so callers can
// wrap it.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintEventName:
			return model.ErrEventAlreadyExists
		case constraintAttendeeEmail:
			return model.ErrAttendeeAlreadyRegistered
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == constraintCapacityExceeded {
			return model.ErrEventCapacityExceeded
		}
	}
	return err
}

// mapStorageError classifies connectivity and timeout failures as
// model.ErrStorageUnavailable, the only retryable class. SafeToRetry is true
// when the request never reached the server.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return model.ErrStorageUnavailable
	}
	return err
}
