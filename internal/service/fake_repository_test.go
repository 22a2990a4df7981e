package service_test

import (
	"context"
	"sync"
	"time"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory stand-in for the Postgres repository. It
// mirrors the persistence semantics the services rely on, including the
// cancelled-row carve-outs in SubmitHours/ApproveHours and the atomic
// capacity check in RegisterForEvent.
type fakeRepository struct {
	mu            sync.Mutex
	users         map[uuid.UUID]model.User
	events        map[uuid.UUID]model.Event
	registrations map[uuid.UUID]model.Registration
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[uuid.UUID]model.User),
		events:        make(map[uuid.UUID]model.Event),
		registrations: make(map[uuid.UUID]model.Registration),
	}
}

func (f *fakeRepository) Migrate(context.Context) error { return nil }

func (f *fakeRepository) CreateUser(_ context.Context, user model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeRepository) CreateEvent(_ context.Context, event model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeRepository) GetEventByID(_ context.Context, id uuid.UUID) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeRepository) ListEvents(context.Context) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]model.Event, 0, len(f.events))
	for _, event := range f.events {
		events = append(events, event)
	}
	return events, nil
}

func (f *fakeRepository) UpdateEvent(_ context.Context, event model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return repository.ErrEventNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeRepository) DeleteEvent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(f.events, id)
	for regID, reg := range f.registrations {
		if reg.EventID == id {
			delete(f.registrations, regID)
		}
	}
	return nil
}

func (f *fakeRepository) RegisterForEvent(_ context.Context, userID, eventID uuid.UUID, capacity *int) (model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[eventID]; !ok {
		return model.Registration{}, repository.ErrEventNotFound
	}

	if capacity != nil {
		count := 0
		for _, reg := range f.registrations {
			if reg.EventID == eventID && reg.Status != model.StatusCancelled {
				count++
			}
		}
		if count >= *capacity {
			return model.Registration{}, repository.ErrEventFull
		}
	}

	for _, reg := range f.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return model.Registration{}, repository.ErrAlreadyRegistered
		}
	}

	reg := model.Registration{
		ID:           uuid.New(),
		UserID:       userID,
		EventID:      eventID,
		Status:       model.StatusRegistered,
		RegisteredAt: time.Now().UTC(),
	}
	f.registrations[reg.ID] = reg
	return reg, nil
}

func (f *fakeRepository) CancelRegistration(_ context.Context, userID, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, reg := range f.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			reg.Status = model.StatusCancelled
			f.registrations[id] = reg
		}
	}
	return nil
}

func (f *fakeRepository) GetRegistration(_ context.Context, userID, eventID uuid.UUID) (model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return reg, nil
		}
	}
	return model.Registration{}, repository.ErrRegistrationNotFound
}

func (f *fakeRepository) GetRegistrationByID(_ context.Context, id uuid.UUID) (model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return model.Registration{}, repository.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRepository) SubmitHours(_ context.Context, id uuid.UUID, selfHours, extraHours float64, extraDesc *string, submittedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	reg.SelfHours = &selfHours
	reg.ExtraHours = &extraHours
	reg.ExtraDesc = extraDesc
	reg.SubmittedAt = &submittedAt
	reg.ApprovedHours = nil
	if reg.Status != model.StatusCancelled {
		reg.Status = model.StatusRegistered
	}
	f.registrations[id] = reg
	return nil
}

func (f *fakeRepository) ApproveHours(_ context.Context, id uuid.UUID, total float64, approvedBy uuid.UUID, approvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	reg.ApprovedHours = &total
	reg.ApprovedBy = &approvedBy
	reg.ApprovedAt = &approvedAt
	reg.Hours = total
	if reg.Status != model.StatusCancelled {
		reg.Status = model.StatusAttended
	}
	f.registrations[id] = reg
	return nil
}

func (f *fakeRepository) RejectHours(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	reg.Status = model.StatusCancelled
	reg.Hours = 0
	reg.SelfHours = nil
	reg.ExtraHours = nil
	reg.ExtraDesc = nil
	reg.SubmittedAt = nil
	reg.ApprovedHours = nil
	reg.ApprovedAt = nil
	f.registrations[id] = reg
	return nil
}

func (f *fakeRepository) MarkAttendance(_ context.Context, id uuid.UUID, status model.RegistrationStatus, hours float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	reg.Status = status
	reg.Hours = hours
	f.registrations[id] = reg
	return nil
}

func (f *fakeRepository) RegisteredCount(_ context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, reg := range f.registrations {
		if reg.EventID == eventID && reg.Status != model.StatusCancelled {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) TotalHoursForUser(_ context.Context, userID uuid.UUID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, reg := range f.registrations {
		if reg.UserID == userID {
			total += reg.Hours
		}
	}
	return total, nil
}

func (f *fakeRepository) RegistrationsForUser(_ context.Context, userID uuid.UUID) ([]model.VolunteerRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var regs []model.VolunteerRegistration
	for _, reg := range f.registrations {
		if reg.UserID != userID {
			continue
		}
		event := f.events[reg.EventID]
		regs = append(regs, model.VolunteerRegistration{
			Registration:  reg,
			EventTitle:    event.Title,
			EventDate:     event.EventDate,
			EventLocation: event.Location,
		})
	}
	return regs, nil
}

func (f *fakeRepository) PendingSubmissions(context.Context) ([]model.PendingSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []model.PendingSubmission
	for _, reg := range f.registrations {
		if reg.SubmittedAt != nil && reg.ApprovedHours == nil {
			subs = append(subs, f.toSubmission(reg))
		}
	}
	return subs, nil
}

func (f *fakeRepository) LatestRegistrations(_ context.Context, limit int) ([]model.PendingSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []model.PendingSubmission
	for _, reg := range f.registrations {
		if len(subs) >= limit {
			break
		}
		subs = append(subs, f.toSubmission(reg))
	}
	return subs, nil
}

func (f *fakeRepository) toSubmission(reg model.Registration) model.PendingSubmission {
	user := f.users[reg.UserID]
	event := f.events[reg.EventID]
	return model.PendingSubmission{
		Registration:   reg,
		VolunteerName:  user.Name,
		VolunteerEmail: user.Email,
		EventTitle:     event.Title,
	}
}

func (f *fakeRepository) AdminStats(context.Context) (model.AdminStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats model.AdminStats
	for _, user := range f.users {
		if user.Role == model.RoleVolunteer {
			stats.Volunteers++
		}
	}
	stats.Events = len(f.events)
	for _, reg := range f.registrations {
		stats.TotalHours += reg.Hours
	}
	return stats, nil
}

func (f *fakeRepository) AllRegistrationRecords(context.Context) ([]model.RegistrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []model.RegistrationRecord
	for _, reg := range f.registrations {
		records = append(records, f.toRecord(reg))
	}
	return records, nil
}

func (f *fakeRepository) ApprovedRegistrationRecords(context.Context) ([]model.RegistrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []model.RegistrationRecord
	for _, reg := range f.registrations {
		if reg.ApprovedHours != nil {
			records = append(records, f.toRecord(reg))
		}
	}
	return records, nil
}

func (f *fakeRepository) GetRegistrationRecord(_ context.Context, id uuid.UUID) (model.RegistrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return model.RegistrationRecord{}, repository.ErrRegistrationNotFound
	}
	return f.toRecord(reg), nil
}

func (f *fakeRepository) toRecord(reg model.Registration) model.RegistrationRecord {
	user := f.users[reg.UserID]
	event := f.events[reg.EventID]
	return model.RegistrationRecord{
		Registration:   reg,
		VolunteerName:  user.Name,
		VolunteerEmail: user.Email,
		EventTitle:     event.Title,
		EventDate:      event.EventDate,
		EventStart:     event.StartAt,
		EventEnd:       event.EndAt,
	}
}
