package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, repo *fakeRepository, capacity *int) model.Event {
	t.Helper()
	event := model.Event{
		ID:        uuid.New(),
		Title:     "Beach Cleanup",
		StartAt:   "2026-09-12T09:00",
		EndAt:     "2026-09-12T12:30",
		EventDate: "2026-09-12T09:00",
		Location:  "North Beach",
		Capacity:  capacity,
		CreatedBy: uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateEvent(context.Background(), event))
	return event
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_registration", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		reg, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRegistered, reg.Status)
		assert.Equal(t, userID, reg.UserID)

		count, err := repo.RegisteredCount(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("unknown_event", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)

		_, err := svc.Register(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, repository.ErrEventNotFound)
	})

	t.Run("duplicate_keeps_single_row", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)

		_, err = svc.Register(ctx, userID, event.ID)
		assert.ErrorIs(t, err, repository.ErrAlreadyRegistered)

		count, err := repo.RegisteredCount(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("full_event_rejected", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		capacity := 1
		event := seedEvent(t, repo, &capacity)

		_, err := svc.Register(ctx, uuid.New(), event.ID)
		require.NoError(t, err)

		_, err = svc.Register(ctx, uuid.New(), event.ID)
		assert.ErrorIs(t, err, repository.ErrEventFull)
	})

	t.Run("cancelled_row_frees_capacity", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		capacity := 1
		event := seedEvent(t, repo, &capacity)
		first := uuid.New()

		_, err := svc.Register(ctx, first, event.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, first, event.ID))

		_, err = svc.Register(ctx, uuid.New(), event.ID)
		assert.NoError(t, err)
	})
}

func TestRegister_concurrentNeverExceedsCapacity(t *testing.T) {
	repo := newFakeRepository()
	svc := service.NewRegistrationService(repo)
	capacity := 5
	event := seedEvent(t, repo, &capacity)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), uuid.New(), event.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrEventFull)
		}
	}
	assert.Equal(t, capacity, succeeded)

	count, err := repo.RegisteredCount(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestCancel_missingRowIsNoop(t *testing.T) {
	repo := newFakeRepository()
	svc := service.NewRegistrationService(repo)

	assert.NoError(t, svc.Cancel(context.Background(), uuid.New(), uuid.New()))
}

func TestSubmitHours(t *testing.T) {
	ctx := context.Background()

	t.Run("self_hours_from_event_duration", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)

		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "2", "setup and teardown"))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NotNil(t, reg.SelfHours)
		assert.InDelta(t, 3.5, *reg.SelfHours, 0.001)
		require.NotNil(t, reg.ExtraHours)
		assert.InDelta(t, 2, *reg.ExtraHours, 0.001)
		require.NotNil(t, reg.ExtraDesc)
		assert.Equal(t, "setup and teardown", *reg.ExtraDesc)
		assert.NotNil(t, reg.SubmittedAt)
		assert.Nil(t, reg.ApprovedHours)
		assert.Equal(t, model.StatusRegistered, reg.Status)
	})

	t.Run("negative_extra_hours_coerced_to_zero", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)

		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "-5", ""))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NotNil(t, reg.ExtraHours)
		assert.Zero(t, *reg.ExtraHours)
		assert.Nil(t, reg.ExtraDesc)
	})

	t.Run("unparseable_schedule_gives_zero_self_hours", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := model.Event{
			ID:        uuid.New(),
			Title:     "TBD Event",
			EventDate: "soon",
			Location:  "Somewhere",
			CreatedBy: uuid.New(),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.CreateEvent(ctx, event))
		userID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)

		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "1.5", ""))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NotNil(t, reg.SelfHours)
		assert.Zero(t, *reg.SelfHours)
	})

	t.Run("not_registered", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)

		err := svc.SubmitHours(ctx, uuid.New(), event.ID, "1", "")
		assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)
	})

	t.Run("cancelled_row_stays_cancelled", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, userID, event.ID))

		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "2", ""))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, reg.Status)
		assert.NotNil(t, reg.SubmittedAt)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("credits_self_plus_extra", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()
		adminID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "2", ""))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)

		total, err := svc.Approve(ctx, adminID, reg.ID)
		require.NoError(t, err)
		assert.InDelta(t, 5.5, total, 0.001)

		reg, err = svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAttended, reg.Status)
		assert.InDelta(t, 5.5, reg.Hours, 0.001)
		require.NotNil(t, reg.ApprovedHours)
		assert.InDelta(t, 5.5, *reg.ApprovedHours, 0.001)
		require.NotNil(t, reg.ApprovedBy)
		assert.Equal(t, adminID, *reg.ApprovedBy)
		assert.True(t, reg.Approved())
	})

	t.Run("nil_hours_count_as_zero", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()

		reg, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)

		total, err := svc.Approve(ctx, uuid.New(), reg.ID)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("reapprove_overwrites", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)
		event := seedEvent(t, repo, nil)
		userID := uuid.New()
		adminID := uuid.New()

		_, err := svc.Register(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "2", ""))

		reg, err := svc.Get(ctx, userID, event.ID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, adminID, reg.ID)
		require.NoError(t, err)
		_, err = svc.Approve(ctx, adminID, reg.ID)
		require.NoError(t, err)

		total, err := repo.TotalHoursForUser(ctx, userID)
		require.NoError(t, err)
		assert.InDelta(t, 5.5, total, 0.001)
	})

	t.Run("unknown_registration", func(t *testing.T) {
		repo := newFakeRepository()
		svc := service.NewRegistrationService(repo)

		_, err := svc.Approve(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, repository.ErrRegistrationNotFound)
	})
}

func TestReject_resetsSubmission(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := service.NewRegistrationService(repo)
	event := seedEvent(t, repo, nil)
	userID := uuid.New()
	adminID := uuid.New()

	_, err := svc.Register(ctx, userID, event.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitHours(ctx, userID, event.ID, "2", "extra work"))

	reg, err := svc.Get(ctx, userID, event.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, adminID, reg.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, reg.ID))

	reg, err = svc.Get(ctx, userID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, reg.Status)
	assert.Zero(t, reg.Hours)
	assert.Nil(t, reg.SelfHours)
	assert.Nil(t, reg.ExtraHours)
	assert.Nil(t, reg.ExtraDesc)
	assert.Nil(t, reg.SubmittedAt)
	assert.Nil(t, reg.ApprovedHours)
	assert.Nil(t, reg.ApprovedAt)
	assert.False(t, reg.Approved())
	// the reviewer's identity survives the reset
	require.NotNil(t, reg.ApprovedBy)
	assert.Equal(t, adminID, *reg.ApprovedBy)
}

func TestMark(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		status     string
		hours      string
		wantStatus model.RegistrationStatus
		wantHours  float64
	}{
		{"attended_with_hours", "attended", "4", model.StatusAttended, 4},
		{"cancelled", "cancelled", "0", model.StatusCancelled, 0},
		{"invalid_status_falls_back", "no-show", "2", model.StatusRegistered, 2},
		{"invalid_hours_fall_back", "attended", "abc", model.StatusAttended, 0},
		{"negative_hours_fall_back", "attended", "-3", model.StatusAttended, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			svc := service.NewRegistrationService(repo)
			event := seedEvent(t, repo, nil)
			userID := uuid.New()

			reg, err := svc.Register(ctx, userID, event.ID)
			require.NoError(t, err)

			require.NoError(t, svc.Mark(ctx, reg.ID, tt.status, tt.hours))

			got, err := svc.Get(ctx, userID, event.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantHours, got.Hours, 0.001)
		})
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"valid", "3.5", 3.5},
		{"valid_with_spaces", " 2 ", 2},
		{"negative", "-5", 0},
		{"malformed", "abc", 0},
		{"nan", "NaN", 0},
		{"infinity", "Inf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseHours(tt.input))
		})
	}
}
