package repository

import (
	"context"
	"errors"
	"time"

	"volunteerhub/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered for event")
	ErrEventFull            = errors.New("event has reached its capacity")
)

// Repository is the single persistence surface for the registration ledger
// and its collaborators. Every workflow transition is one atomic unit here;
// the capacity check and insert in RegisterForEvent share a transaction, and
// the multi-field hour updates are single statements.
type Repository interface {
	Migrate(ctx context.Context) error

	CreateUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	CreateEvent(ctx context.Context, event model.Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	UpdateEvent(ctx context.Context, event model.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	RegisterForEvent(ctx context.Context, userID, eventID uuid.UUID, capacity *int) (model.Registration, error)
	CancelRegistration(ctx context.Context, userID, eventID uuid.UUID) error
	GetRegistration(ctx context.Context, userID, eventID uuid.UUID) (model.Registration, error)
	GetRegistrationByID(ctx context.Context, id uuid.UUID) (model.Registration, error)
	SubmitHours(ctx context.Context, id uuid.UUID, selfHours, extraHours float64, extraDesc *string, submittedAt time.Time) error
	ApproveHours(ctx context.Context, id uuid.UUID, total float64, approvedBy uuid.UUID, approvedAt time.Time) error
	RejectHours(ctx context.Context, id uuid.UUID) error
	MarkAttendance(ctx context.Context, id uuid.UUID, status model.RegistrationStatus, hours float64) error

	RegisteredCount(ctx context.Context, eventID uuid.UUID) (int, error)
	TotalHoursForUser(ctx context.Context, userID uuid.UUID) (float64, error)
	RegistrationsForUser(ctx context.Context, userID uuid.UUID) ([]model.VolunteerRegistration, error)
	PendingSubmissions(ctx context.Context) ([]model.PendingSubmission, error)
	LatestRegistrations(ctx context.Context, limit int) ([]model.PendingSubmission, error)
	AdminStats(ctx context.Context) (model.AdminStats, error)
	AllRegistrationRecords(ctx context.Context) ([]model.RegistrationRecord, error)
	ApprovedRegistrationRecords(ctx context.Context) ([]model.RegistrationRecord, error)
	GetRegistrationRecord(ctx context.Context, id uuid.UUID) (model.RegistrationRecord, error)
}
