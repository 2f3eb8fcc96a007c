// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/attendly/server/internal/metrics"
	"github.com/attendly/server/internal/model"
	"github.com/attendly/server/internal/pagination"
	"github.com/attendly/server/internal/service"
)

// EventHandler holds all HTTP handlers for the event registration API.
type EventHandler struct {
	events        *service.EventService
	registrations *service.RegistrationService
	validate      *validator.Validate
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService, registrations *service.RegistrationService) *EventHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field errors under their json names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &EventHandler{events: events, registrations: registrations, validate: v}
}

// ─── Request / response types ────────────────────────────────────────────────

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Location    string    `json:"location" validate:"required,max=255"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	MaxCapacity int       `json:"max_capacity" validate:"required,gt=0"`
}

// RegisterAttendeeRequest is the payload for registering for an event.
type RegisterAttendeeRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// EventResponse is an event plus its derived capacity fields, computed fresh
// at response time and never persisted.
type EventResponse struct {
	model.Event
	IsFull             bool    `json:"is_full"`
	AvailableSpots     int     `json:"available_spots"`
	CapacityPercentage float64 `json:"capacity_percentage"`
}

func newEventResponse(e model.Event) EventResponse {
	return EventResponse{
		Event:              e,
		IsFull:             e.IsFull(),
		AvailableSpots:     e.AvailableSpots(),
		CapacityPercentage: e.CapacityPercentage(),
	}
}

// AttendeeListResponse is one page of an event's roster.
type AttendeeListResponse struct {
	Data []model.Attendee `json:"data"`
	Meta pagination.Meta  `json:"meta"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ─── Helper utilities ────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Fields = ve.Fields
	}
	writeJSON(w, statusFromError(err), resp)
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFromError maps the domain error taxonomy to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrEventAlreadyExists),
		errors.Is(err, model.ErrAttendeeAlreadyRegistered),
		errors.Is(err, model.ErrEventCapacityExceeded),
		errors.Is(err, model.ErrRegistrationFailed):
		return http.StatusConflict
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts validator field errors into the domain
// ValidationError so they share the boundary's error envelope.
func (h *EventHandler) validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "max":
			fields[fe.Field()] = "must be at most " + fe.Param() + " characters"
		case "gt":
			fields[fe.Field()] = "must be greater than " + fe.Param()
		case "gtfield":
			fields[fe.Field()] = "must be after " + fe.Param()
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &model.ValidationError{Fields: fields}
}

// ─── Handlers ────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, model.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.validationError(err))
		return
	}

	event, err := h.events.CreateEvent(r.Context(), model.CreateEventParams{
		Name:        req.Name,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newEventResponse(*event))
}

// ListEvents handles GET /events and returns all upcoming events.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListUpcomingEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, newEventResponse(e))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetEvent handles GET /events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(*event))
}

// Register handles POST /events/{id}/register and performs a
// concurrency-safe registration for the specified event.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RegisterAttendeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, model.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.validationError(err))
		return
	}

	attendee, err := h.registrations.RegisterAttendee(r.Context(), id, req.Name, req.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
		writeError(w, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("registered").Inc()
	writeJSON(w, http.StatusCreated, attendee)
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrAttendeeAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, model.ErrEventCapacityExceeded):
		return "capacity_exceeded"
	default:
		return "failed"
	}
}

// ListAttendees handles GET /events/{id}/attendees with ?page and ?size.
func (h *EventHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, err := paginationParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	attendees, meta, err := h.registrations.ListAttendees(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	if attendees == nil {
		attendees = []model.Attendee{}
	}
	writeJSON(w, http.StatusOK, AttendeeListResponse{Data: attendees, Meta: meta})
}

// paginationParams reads ?page and ?size, applying defaults and rejecting
// out-of-range values at the boundary.
func paginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Page: pagination.DefaultPage, Size: pagination.DefaultSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, model.NewValidationError("page", "must be an integer >= 1")
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > pagination.MaxSize {
			return params, model.NewValidationError("size", "must be an integer between 1 and 100")
		}
		params.Size = size
	}
	return params, nil
}

// ─── Health check ────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
