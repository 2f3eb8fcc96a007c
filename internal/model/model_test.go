package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventIsFull(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		capacity int
		want     bool
	}{
		{"empty", 0, 10, false},
		{"one seat left", 9, 10, false},
		{"exactly full", 10, 10, true},
		{"over capacity", 11, 10, true},
		{"capacity one", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{MaxCapacity: tt.capacity, CurrentAttendees: tt.current}
			assert.Equal(t, tt.want, e.IsFull())
		})
	}
}

func TestEventAvailableSpots(t *testing.T) {
	e := Event{MaxCapacity: 10, CurrentAttendees: 3}
	assert.Equal(t, 7, e.AvailableSpots())

	e.CurrentAttendees = 10
	assert.Equal(t, 0, e.AvailableSpots())

	// Never negative, even if the counter somehow overshoots.
	e.CurrentAttendees = 12
	assert.Equal(t, 0, e.AvailableSpots())
}

func TestEventCapacityPercentage(t *testing.T) {
	e := Event{MaxCapacity: 8, CurrentAttendees: 2}
	assert.InDelta(t, 25.0, e.CapacityPercentage(), 0.0001)

	e.CurrentAttendees = 8
	assert.InDelta(t, 100.0, e.CapacityPercentage(), 0.0001)

	e = Event{MaxCapacity: 0, CurrentAttendees: 0}
	assert.Zero(t, e.CapacityPercentage())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("max_capacity", "must be a positive integer")
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "max_capacity")
	assert.False(t, IsValidation(ErrEventNotFound))
}
