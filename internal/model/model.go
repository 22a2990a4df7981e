package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// ParseRole defaults to volunteer for anything that is not a known role,
// matching the sign-up form's behaviour.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleVolunteer
}

type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusAttended   RegistrationStatus = "attended"
	StatusCancelled  RegistrationStatus = "cancelled"
)

// ParseStatus validates a raw status value against the three-state enum.
// Invalid input falls back to registered rather than failing; the manual
// attendance form is the only caller and is deliberately lenient.
func ParseStatus(s string) RegistrationStatus {
	switch RegistrationStatus(s) {
	case StatusAttended, StatusCancelled:
		return RegistrationStatus(s)
	default:
		return StatusRegistered
	}
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Event start/end are kept as the raw strings the admin form posts
// ("2006-01-02T15:04"); duration computation parses them leniently and
// falls back to EventDate when they are absent. Capacity nil = unlimited.
type Event struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartAt     string
	EndAt       string
	EventDate   string
	Location    string
	Capacity    *int
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

type Registration struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	EventID       uuid.UUID
	Status        RegistrationStatus
	SelfHours     *float64
	ExtraHours    *float64
	ExtraDesc     *string
	SubmittedAt   *time.Time
	ApprovedHours *float64
	ApprovedBy    *uuid.UUID
	ApprovedAt    *time.Time
	Hours         float64
	RegisteredAt  time.Time
}

// Approved reports whether an admin has signed off on the current submission.
func (r Registration) Approved() bool {
	return r.ApprovedHours != nil
}

// VolunteerRegistration is a ledger row joined with its event, as shown on
// the volunteer dashboard.
type VolunteerRegistration struct {
	Registration
	EventTitle    string
	EventDate     string
	EventLocation string
}

// PendingSubmission is a ledger row awaiting admin review, joined with the
// volunteer and event it belongs to.
type PendingSubmission struct {
	Registration
	VolunteerName  string
	VolunteerEmail string
	EventTitle     string
}

// RegistrationRecord is the full export row handed to the CSV/PDF renderers.
type RegistrationRecord struct {
	Registration
	VolunteerName  string
	VolunteerEmail string
	EventTitle     string
	EventDate      string
	EventStart     string
	EventEnd       string
}

type AdminStats struct {
	Volunteers int
	Events     int
	TotalHours float64
}
