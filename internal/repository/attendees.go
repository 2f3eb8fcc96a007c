package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/server/internal/model"
)

const attendeeColumns = `id, name, email, event_id, registered_at, created_at, updated_at`

// PostgresAttendeeRepository handles persistence for attendees.
type PostgresAttendeeRepository struct {
	db *pgxpool.Pool
	// txTimeout bounds the registration transaction so it fails with
	// model.ErrStorageUnavailable instead of hanging on a stuck lock.
	txTimeout time.Duration
}

// NewAttendeeRepository constructs a PostgresAttendeeRepository.
func NewAttendeeRepository(db *pgxpool.Pool, txTimeout time.Duration) *PostgresAttendeeRepository {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &PostgresAttendeeRepository{db: db, txTimeout: txTimeout}
}

// FindByEventAndEmail returns the matching attendee, or (nil, nil) when no
// such registration exists.
func (r *PostgresAttendeeRepository) FindByEventAndEmail(ctx context.Context, eventID, email string) (*model.Attendee, error) {
	var a model.Attendee
	err := r.db.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE event_id = $1 AND email = $2`,
		eventID, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.EventID, &a.RegisteredAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendee: %w", mapStorageError(err))
	}
	return &a, nil
}

// ListByEvent returns one page of attendees for an event together with the
// total count. The count comes from a window function on the same scan, so
// the two numbers are always consistent with each other even while
// registrations commit concurrently.
func (r *PostgresAttendeeRepository) ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]model.Attendee, int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attendeeColumns+`, COUNT(*) OVER() AS total
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY registered_at ASC, id ASC
		 OFFSET $2 LIMIT $3`,
		eventID, offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", mapStorageError(err))
	}
	defer rows.Close()

	var (
		attendees []model.Attendee
		total     int
	)
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.EventID, &a.RegisteredAt, &a.CreatedAt, &a.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", mapStorageError(err))
	}

	// A page beyond the last row returns no rows, so the window count is
	// lost; fetch it separately in that case only.
	if len(attendees) == 0 {
		err := r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID,
		).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("count attendees: %w", mapStorageError(err))
		}
	}
	return attendees, total, nil
}

// Register performs a concurrency-safe registration inside a single
// transaction.
//
// The event row is locked with SELECT ... FOR UPDATE before the capacity and
// uniqueness checks, which serializes concurrent registrations for the same
// event: two simultaneous attempts for the last open seat result in exactly
// one success and one ErrEventCapacityExceeded, never two successes.
// Registrations for different events lock different rows and do not block
// each other. The schema's CHECK (current_attendees <= max_capacity) and
// UNIQUE (email, event_id) constraints back the same invariants; if either
// fires, the whole transaction rolls back, so an attendee row is never left
// behind without its counter increment.
func (r *PostgresAttendeeRepository) Register(ctx context.Context, params model.RegisterAttendeeParams) (*model.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.txTimeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", mapStorageError(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	// Lock the event row for the duration of the transaction.
	var capacity, current int
	err = tx.QueryRow(ctx,
		`SELECT max_capacity, current_attendees
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		params.EventID,
	).Scan(&capacity, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", mapStorageError(err))
	}

	// Re-check both invariants under the lock; the service-level checks are
	// advisory only.
	if current >= capacity {
		err = model.ErrEventCapacityExceeded
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = $1 AND email = $2`,
		params.EventID, params.Email,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", mapStorageError(err))
	}
	if dupCount > 0 {
		err = model.ErrAttendeeAlreadyRegistered
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET current_attendees = current_attendees + 1, updated_at = now()
		 WHERE id = $1`,
		params.EventID,
	)
	if err != nil {
		return nil, registrationError(err)
	}

	now := time.Now().UTC()
	attendee := &model.Attendee{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Email:        params.Email,
		EventID:      params.EventID,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO attendees (`+attendeeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attendee.ID, attendee.Name, attendee.Email, attendee.EventID,
		attendee.RegisteredAt, attendee.CreatedAt, attendee.UpdatedAt,
	)
	if err != nil {
		return nil, registrationError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, registrationError(err)
	}

	return attendee, nil
}

// registrationError wraps write failures inside the registration transaction
// with model.ErrRegistrationFailed, keeping the mapped cause in the chain.
func registrationError(err error) error {
	cause := mapConstraintError(err)
	cause = mapStorageError(cause)
	return fmt.Errorf("%w: %w", model.ErrRegistrationFailed, cause)
}
