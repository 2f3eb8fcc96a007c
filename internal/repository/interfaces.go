// Package repository implements the persistence layer for events and
// attendees. It uses pgx directly (no ORM); interfaces are defined here so
// the service layer can be tested against in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/attendly/server/internal/model"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	// Create inserts a new event with a zero attendee counter.
	Create(ctx context.Context, params model.CreateEventParams) (*model.Event, error)
	// GetByID returns the event or model.ErrEventNotFound.
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// GetByName returns the event with the given name or model.ErrEventNotFound.
	GetByName(ctx context.Context, name string) (*model.Event, error)
	// ListUpcoming returns events starting strictly after now, ascending by
	// start time.
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)
}

// AttendeeRepository defines persistence operations for attendees, including
// the atomic registration transaction.
type AttendeeRepository interface {
	// FindByEventAndEmail returns the matching attendee; absence is
	// reported as (nil, nil), not as an error.
	FindByEventAndEmail(ctx context.Context, eventID, email string) (*model.Attendee, error)
	// ListByEvent returns one page of attendees plus the total count taken
	// from the same scan, ordered by registration time.
	ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]model.Attendee, int, error)
	// Register atomically inserts the attendee and increments the event's
	// attendee counter. Both writes commit together or not at all. It
	// re-checks capacity and uniqueness under a row lock, so it is the
	// authoritative enforcement point for both invariants.
	Register(ctx context.Context, params model.RegisterAttendeeParams) (*model.Attendee, error)
}
