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

const eventColumns = `id, name, location, start_time, end_time, max_capacity, current_attendees, created_at, updated_at`

// PostgresEventRepository handles persistence for events.
type PostgresEventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs a PostgresEventRepository.
func NewEventRepository(db *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Create inserts a new event with a generated UUID and a zero counter.
func (r *PostgresEventRepository) Create(ctx context.Context, params model.CreateEventParams) (*model.Event, error) {
	now := time.Now().UTC()
	event := &model.Event{
		ID:               uuid.New().String(),
		Name:             params.Name,
		Location:         params.Location,
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		MaxCapacity:      params.MaxCapacity,
		CurrentAttendees: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Name, event.Location, event.StartTime, event.EndTime,
		event.MaxCapacity, event.CurrentAttendees, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintError(err); errors.Is(mapped, model.ErrEventAlreadyExists) {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert event: %w", mapStorageError(err))
	}
	return event, nil
}

// GetByID returns a single event or model.ErrEventNotFound.
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetByName returns the event with the given name or model.ErrEventNotFound.
func (r *PostgresEventRepository) GetByName(ctx context.Context, name string) (*model.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE name = $1`, name)
}

func (r *PostgresEventRepository) getOne(ctx context.Context, query string, arg any) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime,
		&e.MaxCapacity, &e.CurrentAttendees, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", mapStorageError(err))
	}
	return &e, nil
}

// ListUpcoming returns events starting strictly after now, soonest first.
func (r *PostgresEventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE start_time > $1
		 ORDER BY start_time ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", mapStorageError(err))
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime,
			&e.MaxCapacity, &e.CurrentAttendees, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
