package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/validator"

	"github.com/google/uuid"
)

// ErrValidation marks user-facing input errors; handlers surface the message
// as a flash and never treat it as fatal.
var ErrValidation = errors.New("validation failed")

// formInputLayout is what the browser datetime-local picker posts.
const formInputLayout = "2006-01-02T15:04"

// durationLayout is the normalized form stored and parsed for duration math.
const durationLayout = "2006-01-02 15:04"

type EventService struct {
	repo      repository.Repository
	validator *validator.Validator
}

func NewEventService(repo repository.Repository, v *validator.Validator) *EventService {
	return &EventService{repo: repo, validator: v}
}

type CreateEventInput struct {
	Title       string `validate:"required"`
	StartAt     string `validate:"required"`
	EndAt       string `validate:"required"`
	Location    string `validate:"required"`
	Description string
	Capacity    string
}

// Create validates and stores a new event. It returns the stored event and
// its duration in hours for the confirmation message.
func (s *EventService) Create(ctx context.Context, input CreateEventInput, createdBy uuid.UUID) (model.Event, float64, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.StartAt = strings.TrimSpace(input.StartAt)
	input.EndAt = strings.TrimSpace(input.EndAt)
	input.Location = strings.TrimSpace(input.Location)

	if err := s.validator.Validate(input); err != nil {
		return model.Event{}, 0, fmt.Errorf("%w: title, start time, end time, and location are required", ErrValidation)
	}

	start, err := time.Parse(formInputLayout, input.StartAt)
	if err != nil {
		return model.Event{}, 0, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DDTHH:MM", ErrValidation)
	}
	end, err := time.Parse(formInputLayout, input.EndAt)
	if err != nil {
		return model.Event{}, 0, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DDTHH:MM", ErrValidation)
	}
	if !end.After(start) {
		return model.Event{}, 0, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	event := model.Event{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
		EventDate:   input.StartAt,
		Location:    input.Location,
		Capacity:    parseCapacity(input.Capacity),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return model.Event{}, 0, err
	}

	return event, end.Sub(start).Hours(), nil
}

type UpdateEventInput struct {
	Title       string `validate:"required"`
	Date        string `validate:"required"`
	Location    string `validate:"required"`
	Description string
	Capacity    string
}

// Update edits the event's presentational fields. The start/end window is
// fixed at creation; the edit form only moves the display date.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Date = strings.TrimSpace(input.Date)
	input.Location = strings.TrimSpace(input.Location)

	if err := s.validator.Validate(input); err != nil {
		return fmt.Errorf("%w: title, date, and location are required", ErrValidation)
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	event.Title = input.Title
	event.Description = strings.TrimSpace(input.Description)
	event.EventDate = input.Date
	event.Location = input.Location
	event.Capacity = parseCapacity(input.Capacity)

	return s.repo.UpdateEvent(ctx, event)
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteEvent(ctx, id)
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (model.Event, error) {
	return s.repo.GetEventByID(ctx, id)
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.repo.ListEvents(ctx)
}

// EventDuration computes the scheduled length of an event in hours, rounded
// to two decimals. It falls back to the single event date when an explicit
// start is absent and reports ok=false when either endpoint is unparseable,
// so callers can render "unknown" instead of a number.
func EventDuration(event model.Event) (float64, bool) {
	startRaw := event.StartAt
	if startRaw == "" {
		startRaw = event.EventDate
	}

	start, okStart := parseEventTime(startRaw)
	end, okEnd := parseEventTime(event.EndAt)
	if !okStart || !okEnd {
		return 0, false
	}

	hours := end.Sub(start).Hours()
	return math.Round(hours*100) / 100, true
}

func parseEventTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "T", " "))
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(durationLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseCapacity treats anything that is not a positive decimal as unlimited,
// mirroring the admin form's lenient handling.
func parseCapacity(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
