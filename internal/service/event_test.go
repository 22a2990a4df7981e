package service_test

import (
	"context"
	"testing"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
	"volunteerhub/internal/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventService(repo repository.Repository) *service.EventService {
	return service.NewEventService(repo, validator.New())
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("valid_input", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)

		event, duration, err := svc.Create(ctx, service.CreateEventInput{
			Title:       "Food Drive",
			StartAt:     "2026-09-12T09:00",
			EndAt:       "2026-09-12T12:30",
			Location:    "Community Center",
			Description: "Sorting donations",
			Capacity:    "20",
		}, adminID)
		require.NoError(t, err)
		assert.InDelta(t, 3.5, duration, 0.001)
		assert.Equal(t, "Food Drive", event.Title)
		require.NotNil(t, event.Capacity)
		assert.Equal(t, 20, *event.Capacity)
		assert.Equal(t, adminID, event.CreatedBy)
		// the start time doubles as the display date
		assert.Equal(t, event.StartAt, event.EventDate)
	})

	t.Run("missing_fields", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)

		_, _, err := svc.Create(ctx, service.CreateEventInput{Title: "No Times"}, adminID)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("malformed_times", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)

		_, _, err := svc.Create(ctx, service.CreateEventInput{
			Title:    "Bad Times",
			StartAt:  "12/09/2026 09:00",
			EndAt:    "12/09/2026 12:00",
			Location: "Hall",
		}, adminID)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("end_before_start", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)

		_, _, err := svc.Create(ctx, service.CreateEventInput{
			Title:    "Backwards",
			StartAt:  "2026-09-12T12:00",
			EndAt:    "2026-09-12T09:00",
			Location: "Hall",
		}, adminID)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("capacity_leniency", func(t *testing.T) {
		tests := []struct {
			name     string
			capacity string
			want     *int
		}{
			{"empty_is_unlimited", "", nil},
			{"malformed_is_unlimited", "lots", nil},
			{"negative_is_unlimited", "-3", nil},
			{"zero_is_kept", "0", intPtr(0)},
			{"positive_is_kept", "15", intPtr(15)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newFakeRepository()
				svc := newEventService(repo)

				event, _, err := svc.Create(ctx, service.CreateEventInput{
					Title:    "Capacity Check",
					StartAt:  "2026-09-12T09:00",
					EndAt:    "2026-09-12T10:00",
					Location: "Hall",
					Capacity: tt.capacity,
				}, adminID)
				require.NoError(t, err)
				if tt.want == nil {
					assert.Nil(t, event.Capacity)
				} else {
					require.NotNil(t, event.Capacity)
					assert.Equal(t, *tt.want, *event.Capacity)
				}
			})
		}
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("updates_fields", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)
		event := seedEvent(t, repo, nil)

		err := svc.Update(ctx, event.ID, service.UpdateEventInput{
			Title:    "Renamed",
			Date:     "2026-10-01T10:00",
			Location: "South Beach",
			Capacity: "8",
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "2026-10-01T10:00", got.EventDate)
		assert.Equal(t, "South Beach", got.Location)
		require.NotNil(t, got.Capacity)
		assert.Equal(t, 8, *got.Capacity)
		// the original start/end window is untouched
		assert.Equal(t, event.StartAt, got.StartAt)
		assert.Equal(t, event.EndAt, got.EndAt)
	})

	t.Run("missing_fields", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)
		event := seedEvent(t, repo, nil)

		err := svc.Update(ctx, event.ID, service.UpdateEventInput{Title: "Only Title"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown_event", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newEventService(repo)

		err := svc.Update(ctx, uuid.New(), service.UpdateEventInput{
			Title:    "Ghost",
			Date:     "2026-10-01T10:00",
			Location: "Nowhere",
		})
		assert.ErrorIs(t, err, repository.ErrEventNotFound)
	})
}

func TestEventDuration(t *testing.T) {
	tests := []struct {
		name  string
		event model.Event
		want  float64
		ok    bool
	}{
		{
			name:  "explicit_window",
			event: model.Event{StartAt: "2026-09-12T09:00", EndAt: "2026-09-12T12:30"},
			want:  3.5,
			ok:    true,
		},
		{
			name:  "space_separated_times",
			event: model.Event{StartAt: "2026-09-12 09:00", EndAt: "2026-09-12 11:00"},
			want:  2,
			ok:    true,
		},
		{
			name:  "event_date_fallback",
			event: model.Event{EventDate: "2026-09-12T09:00", EndAt: "2026-09-12T10:15"},
			want:  1.25,
			ok:    true,
		},
		{
			name:  "rounded_to_two_decimals",
			event: model.Event{StartAt: "2026-09-12T09:00", EndAt: "2026-09-12T09:20"},
			want:  0.33,
			ok:    true,
		},
		{
			name:  "missing_end",
			event: model.Event{StartAt: "2026-09-12T09:00"},
			ok:    false,
		},
		{
			name:  "unparseable_start",
			event: model.Event{StartAt: "next tuesday", EndAt: "2026-09-12T12:00"},
			ok:    false,
		},
		{
			name:  "empty_event",
			event: model.Event{},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := service.EventDuration(tt.event)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestDeleteEvent_removesRegistrations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	events := newEventService(repo)
	registrations := service.NewRegistrationService(repo)
	event := seedEvent(t, repo, nil)
	userID := uuid.New()

	_, err := registrations.Register(ctx, userID, event.ID)
	require.NoError(t, err)

	require.NoError(t, events.Delete(ctx, event.ID))

	_, err = events.Get(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
	_, err = registrations.Get(ctx, userID, event.ID)
	assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)

	stats, err := repo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Events)
}

func intPtr(n int) *int {
	return &n
}
