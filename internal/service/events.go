// Package service implements business logic and orchestration between HTTP
// handlers and the repository layer: event creation and listing, the
// registration engine, and the paginated roster query.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/attendly/server/internal/model"
	"github.com/attendly/server/internal/repository"
)

const maxFieldLength = 255

// EventService creates and lists events.
type EventService struct {
	events repository.EventRepository
	logger zerolog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventRepository, logger zerolog.Logger) *EventService {
	return &EventService{events: events, logger: logger}
}

// CreateEvent validates the fields, enforces name uniqueness, and persists
// the event with a zero attendee counter.
func (s *EventService) CreateEvent(ctx context.Context, params model.CreateEventParams) (*model.Event, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Location = strings.TrimSpace(params.Location)

	if err := validateEventParams(params, time.Now().UTC()); err != nil {
		return nil, err
	}

	// Fast rejection for duplicate names; the unique constraint on
	// events.name catches the race where two creations slip past this check.
	if _, err := s.events.GetByName(ctx, params.Name); err == nil {
		return nil, model.ErrEventAlreadyExists
	} else if !errors.Is(err, model.ErrEventNotFound) {
		return nil, fmt.Errorf("check event name: %w", err)
	}

	event, err := s.events.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Str("name", event.Name).
		Int("max_capacity", event.MaxCapacity).
		Msg("event created")
	return event, nil
}

// ListUpcomingEvents returns events starting strictly after the current
// time, soonest first.
func (s *EventService) ListUpcomingEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.ListUpcoming(ctx, time.Now().UTC())
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "event id is required")
	}
	return s.events.GetByID(ctx, id)
}

func validateEventParams(params model.CreateEventParams, now time.Time) error {
	fields := map[string]string{}
	if params.Name == "" || len(params.Name) > maxFieldLength {
		fields["name"] = fmt.Sprintf("must be between 1 and %d characters", maxFieldLength)
	}
	if params.Location == "" || len(params.Location) > maxFieldLength {
		fields["location"] = fmt.Sprintf("must be between 1 and %d characters", maxFieldLength)
	}
	if params.MaxCapacity <= 0 {
		fields["max_capacity"] = "must be a positive integer"
	}
	if !params.EndTime.After(params.StartTime) {
		fields["end_time"] = "must be after start_time"
	}
	if !params.StartTime.After(now) {
		fields["start_time"] = "must be in the future"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}
