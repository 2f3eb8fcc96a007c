package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/attendly/server/internal/model"
	"github.com/attendly/server/internal/pagination"
	"github.com/attendly/server/internal/repository"
)

// RegistrationService registers attendees against event capacity and serves
// paginated rosters.
type RegistrationService struct {
	events    repository.EventRepository
	attendees repository.AttendeeRepository
	logger    zerolog.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(
	events repository.EventRepository,
	attendees repository.AttendeeRepository,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{events: events, attendees: attendees, logger: logger}
}

// RegisterAttendee registers an email for an event.
//
// The capacity and duplicate checks here are advisory: they give callers a
// fast, specific rejection without opening a transaction. The repository's
// Register call is the authoritative enforcement point; it repeats both
// checks under a row lock so that attempts racing past these pre-checks are
// still serialized.
func (s *RegistrationService) RegisterAttendee(ctx context.Context, eventID, name, email string) (*model.Attendee, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateAttendee(eventID, name, email); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.IsFull() {
		s.logger.Warn().Str("event_id", eventID).Msg("registration rejected: event full")
		return nil, model.ErrEventCapacityExceeded
	}

	existing, err := s.attendees.FindByEventAndEmail(ctx, eventID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn().Str("event_id", eventID).Str("email", email).Msg("registration rejected: duplicate")
		return nil, model.ErrAttendeeAlreadyRegistered
	}

	attendee, err := s.attendees.Register(ctx, model.RegisterAttendeeParams{
		EventID: eventID,
		Name:    name,
		Email:   email,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", eventID).
		Str("attendee_id", attendee.ID).
		Str("email", email).
		Msg("attendee registered")
	return attendee, nil
}

// ListAttendees returns one page of an event's roster together with paging
// metadata. The rows and total come from the same scan, so they are always
// consistent with each other.
func (s *RegistrationService) ListAttendees(ctx context.Context, eventID string, params pagination.Params) ([]model.Attendee, pagination.Meta, error) {
	if !params.Valid() {
		return nil, pagination.Meta{}, model.NewValidationError("page", "page must be >= 1 and size between 1 and 100")
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, pagination.Meta{}, err
	}

	attendees, total, err := s.attendees.ListByEvent(ctx, eventID, params.Offset(), params.Size)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return attendees, pagination.NewMeta(params, total), nil
}

func validateAttendee(eventID, name, email string) error {
	fields := map[string]string{}
	if eventID == "" {
		fields["event_id"] = "event id is required"
	}
	if name == "" || len(name) > maxFieldLength {
		fields["name"] = "must be between 1 and 255 characters"
	}
	if !isValidEmail(email) {
		fields["email"] = "must be a valid email address"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// isValidEmail does a basic structural check; the boundary layer performs
// full syntactic validation before requests reach this package.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
