// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event represents a scheduled event with a fixed attendee capacity.
type Event struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxCapacity      int       `json:"max_capacity"`
	CurrentAttendees int       `json:"current_attendees"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxCapacity
}

// AvailableSpots returns the number of open seats, never negative.
func (e *Event) AvailableSpots() int {
	if spots := e.MaxCapacity - e.CurrentAttendees; spots > 0 {
		return spots
	}
	return 0
}

// CapacityPercentage returns capacity utilization in the range [0, 100].
func (e *Event) CapacityPercentage() float64 {
	if e.MaxCapacity == 0 {
		return 0.0
	}
	return float64(e.CurrentAttendees) / float64(e.MaxCapacity) * 100
}

// Attendee represents a single registration of an email address for an
// event. The pair (email, event_id) is unique: an email may register for
// many events, but only once per event.
type Attendee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateEventParams carries the validated fields for a new event.
type CreateEventParams struct {
	Name        string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	MaxCapacity int
}

// RegisterAttendeeParams carries the normalized fields for a registration.
type RegisterAttendeeParams struct {
	EventID string
	Name    string
	Email   string
}
