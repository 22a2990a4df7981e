package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"

	"github.com/google/uuid"
)

// RegistrationService is the hours-workflow engine. It owns every rule of
// the ledger state machine: capacity-aware registration, cancellation,
// lenient hour submission, and the admin approve/reject/mark transitions.
// Persistence-level atomicity (the capacity transaction, the multi-field
// updates) lives in the repository; policy lives here.
type RegistrationService struct {
	repo repository.Repository
}

func NewRegistrationService(repo repository.Repository) *RegistrationService {
	return &RegistrationService{repo: repo}
}

// Register creates a ledger row for (user, event). Duplicate registrations
// and full events surface as repository sentinels the handler turns into
// flash messages; neither mutates the ledger.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID uuid.UUID) (model.Registration, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return model.Registration{}, err
	}
	return s.repo.RegisterForEvent(ctx, userID, eventID, event.Capacity)
}

// Cancel flips the caller's own registration to cancelled. A missing row is
// a silent no-op; cancelled rows stop counting against event capacity.
func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID uuid.UUID) error {
	return s.repo.CancelRegistration(ctx, userID, eventID)
}

// SubmitHours records a volunteer's worked hours for an event and re-opens
// the row for admin review. Self hours come from the event's scheduled
// duration (0 when the schedule is unparseable); the volunteer-declared
// extra hours are coerced leniently, never rejected. A cancelled row keeps
// its status but still receives the updated hour fields.
func (s *RegistrationService) SubmitHours(ctx context.Context, userID, eventID uuid.UUID, extraHours, extraDesc string) error {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	reg, err := s.repo.GetRegistration(ctx, userID, eventID)
	if err != nil {
		return err
	}

	selfHours, ok := EventDuration(event)
	if !ok {
		selfHours = 0
	}

	var desc *string
	if d := strings.TrimSpace(extraDesc); d != "" {
		desc = &d
	}

	return s.repo.SubmitHours(ctx, reg.ID, selfHours, ParseHours(extraHours), desc, time.Now().UTC())
}

// Approve credits self + extra hours (nulls count as 0) to the volunteer.
// Re-approving recomputes and overwrites rather than appending.
func (s *RegistrationService) Approve(ctx context.Context, adminID, regID uuid.UUID) (float64, error) {
	reg, err := s.repo.GetRegistrationByID(ctx, regID)
	if err != nil {
		return 0, err
	}

	var total float64
	if reg.SelfHours != nil {
		total += *reg.SelfHours
	}
	if reg.ExtraHours != nil {
		total += *reg.ExtraHours
	}

	if err := s.repo.ApproveHours(ctx, regID, total, adminID, time.Now().UTC()); err != nil {
		return 0, err
	}
	return total, nil
}

// Reject is a destructive hard reset of the submission, not a send-back:
// the row goes to cancelled with zero credited hours and every
// submission-related field cleared.
func (s *RegistrationService) Reject(ctx context.Context, regID uuid.UUID) error {
	return s.repo.RejectHours(ctx, regID)
}

// Mark is the admin attendance override, bypassing the submit/approve
// pipeline. Invalid status falls back to registered; invalid hours to 0.
func (s *RegistrationService) Mark(ctx context.Context, regID uuid.UUID, status, hours string) error {
	return s.repo.MarkAttendance(ctx, regID, model.ParseStatus(strings.TrimSpace(status)), ParseHours(hours))
}

func (s *RegistrationService) Get(ctx context.Context, userID, eventID uuid.UUID) (model.Registration, error) {
	return s.repo.GetRegistration(ctx, userID, eventID)
}

// ParseHours coerces a raw hours field to a usable value: empty, malformed,
// non-finite, or negative input all become 0. The workflow never blocks on
// bad numeric input; only capacity and duplicate registration are hard
// failures.
func ParseHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
