package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/attendly/server/internal/model"
)

// fakeStore is an in-memory implementation of both repository interfaces.
// Register holds a mutex for its whole read-modify-write sequence, mirroring
// the row lock the postgres implementation takes, so it is safe for the
// concurrency tests.
type fakeStore struct {
	mu        sync.Mutex
	events    map[string]*model.Event
	attendees map[string][]model.Attendee

	// registerErr, when set, fails the atomic write step without mutating
	// any state, simulating a transaction rollback.
	registerErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[string]*model.Event),
		attendees: make(map[string][]model.Attendee),
	}
}

func (f *fakeStore) Create(_ context.Context, params model.CreateEventParams) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.Name == params.Name {
			return nil, model.ErrEventAlreadyExists
		}
	}
	now := time.Now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		Name:        params.Name,
		Location:    params.Location,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		MaxCapacity: params.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.events[event.ID] = event
	copied := *event
	return &copied, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeStore) GetByName(_ context.Context, name string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.Name == name {
			copied := *e
			return &copied, nil
		}
	}
	return nil, model.ErrEventNotFound
}

func (f *fakeStore) ListUpcoming(_ context.Context, now time.Time) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []model.Event
	for _, e := range f.events {
		if e.StartTime.After(now) {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (f *fakeStore) FindByEventAndEmail(_ context.Context, eventID, email string) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.attendees[eventID] {
		if a.Email == email {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByEvent(_ context.Context, eventID string, offset, limit int) ([]model.Attendee, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.attendees[eventID]
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]model.Attendee, end-offset)
	copy(page, all[offset:end])
	return page, total, nil
}

func (f *fakeStore) Register(_ context.Context, params model.RegisterAttendeeParams) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[params.EventID]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	if event.CurrentAttendees >= event.MaxCapacity {
		return nil, model.ErrEventCapacityExceeded
	}
	for _, a := range f.attendees[params.EventID] {
		if a.Email == params.Email {
			return nil, model.ErrAttendeeAlreadyRegistered
		}
	}
	if f.registerErr != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRegistrationFailed, f.registerErr)
	}

	now := time.Now().UTC()
	attendee := model.Attendee{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Email:        params.Email,
		EventID:      params.EventID,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.attendees[params.EventID] = append(f.attendees[params.EventID], attendee)
	event.CurrentAttendees++
	event.UpdatedAt = now

	copied := attendee
	return &copied, nil
}

// attendeeCount reports the number of stored attendee rows for an event.
func (f *fakeStore) attendeeCount(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attendees[eventID])
}
