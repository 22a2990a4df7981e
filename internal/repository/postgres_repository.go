package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"volunteerhub/internal/database"
	"volunteerhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *database.Database
}

func NewPostgresRepository(db *database.Database) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the schema on startup. The migrations in migrations/ are
// the canonical history; this keeps a fresh development database usable
// without running cmd/migrate first.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tbl_user (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL CHECK (role IN ('volunteer', 'admin')),
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tbl_event (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_at VARCHAR(32) NOT NULL DEFAULT '',
			end_at VARCHAR(32) NOT NULL DEFAULT '',
			event_date VARCHAR(32) NOT NULL DEFAULT '',
			location VARCHAR(200) NOT NULL,
			capacity INT,
			created_by UUID NOT NULL REFERENCES tbl_user(id),
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tbl_registration (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES tbl_user(id),
			event_id UUID NOT NULL REFERENCES tbl_event(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'registered'
				CHECK (status IN ('registered', 'attended', 'cancelled')),
			self_hours DOUBLE PRECISION,
			extra_hours DOUBLE PRECISION,
			extra_desc TEXT,
			submitted_at TIMESTAMPTZ,
			approved_hours DOUBLE PRECISION,
			approved_by UUID REFERENCES tbl_user(id),
			approved_at TIMESTAMPTZ,
			hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			registered_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, event_id)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			k VARCHAR(255) PRIMARY KEY,
			v BYTEA,
			e BIGINT
		);`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	slog.Info("Database migration completed")
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user model.User) error {
	_, err := r.db.Pool.Exec(ctx,
		"INSERT INTO tbl_user (id, name, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM tbl_user WHERE id = $1", id)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM tbl_user WHERE email = $1", email)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg any) (model.User, error) {
	var user model.User
	err := r.db.Pool.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event model.Event) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO tbl_event (id, title, description, start_at, end_at, event_date, location, capacity, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Description, event.StartAt, event.EndAt,
		event.EventDate, event.Location, event.Capacity, event.CreatedBy, event.CreatedAt)
	return err
}

const eventColumns = "id, title, description, start_at, end_at, event_date, location, capacity, created_by, created_at"

func scanEvent(row pgx.Row) (model.Event, error) {
	var event model.Event
	err := row.Scan(&event.ID, &event.Title, &event.Description, &event.StartAt, &event.EndAt,
		&event.EventDate, &event.Location, &event.Capacity, &event.CreatedBy, &event.CreatedAt)
	return event, err
}

func (r *PostgresRepository) GetEventByID(ctx context.Context, id uuid.UUID) (model.Event, error) {
	event, err := scanEvent(r.db.Pool.QueryRow(ctx,
		"SELECT "+eventColumns+" FROM tbl_event WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, err
	}
	return event, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+eventColumns+" FROM tbl_event ORDER BY event_date ASC, created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event model.Event) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE tbl_event SET title = $1, description = $2, event_date = $3, location = $4, capacity = $5 WHERE id = $6`,
		event.Title, event.Description, event.EventDate, event.Location, event.Capacity, event.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes the event and its registrations in one transaction.
// The FK is ON DELETE CASCADE; the explicit delete keeps the intent visible.
func (r *PostgresRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err := tx.Exec(ctx, "DELETE FROM tbl_registration WHERE event_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete registrations: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM tbl_event WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return tx.Commit(ctx)
}

// RegisterForEvent inserts a ledger row after checking capacity inside one
// transaction. The event row is locked so two concurrent registrations
// cannot both pass the count, and UNIQUE(user_id, event_id) backs the
// duplicate check even outside the lock.
func (r *PostgresRepository) RegisterForEvent(ctx context.Context, userID, eventID uuid.UUID, capacity *int) (model.Registration, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return model.Registration{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if capacity != nil {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, "SELECT id FROM tbl_event WHERE id = $1 FOR UPDATE", eventID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.Registration{}, ErrEventNotFound
			}
			return model.Registration{}, err
		}

		var count int
		err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM tbl_registration WHERE event_id = $1 AND status <> 'cancelled'", eventID).
			Scan(&count)
		if err != nil {
			return model.Registration{}, err
		}
		if count >= *capacity {
			return model.Registration{}, ErrEventFull
		}
	}

	reg := model.Registration{
		ID:           uuid.New(),
		UserID:       userID,
		EventID:      eventID,
		Status:       model.StatusRegistered,
		RegisteredAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		"INSERT INTO tbl_registration (id, user_id, event_id, status, registered_at) VALUES ($1, $2, $3, $4, $5)",
		reg.ID, reg.UserID, reg.EventID, reg.Status, reg.RegisteredAt)
	if isUniqueViolation(err) {
		return model.Registration{}, ErrAlreadyRegistered
	}
	if err != nil {
		return model.Registration{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Registration{}, err
	}
	return reg, nil
}

// CancelRegistration is a no-op when no row exists, as in the original flow.
func (r *PostgresRepository) CancelRegistration(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		"UPDATE tbl_registration SET status = 'cancelled' WHERE user_id = $1 AND event_id = $2",
		userID, eventID)
	return err
}

const registrationColumns = `id, user_id, event_id, status, self_hours, extra_hours, extra_desc,
	submitted_at, approved_hours, approved_by, approved_at, hours, registered_at`

const registrationColumnsR = `r.id, r.user_id, r.event_id, r.status, r.self_hours, r.extra_hours,
	r.extra_desc, r.submitted_at, r.approved_hours, r.approved_by, r.approved_at, r.hours, r.registered_at`

func scanRegistration(row pgx.Row) (model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.SelfHours, &reg.ExtraHours,
		&reg.ExtraDesc, &reg.SubmittedAt, &reg.ApprovedHours, &reg.ApprovedBy, &reg.ApprovedAt,
		&reg.Hours, &reg.RegisteredAt)
	return reg, err
}

func (r *PostgresRepository) GetRegistration(ctx context.Context, userID, eventID uuid.UUID) (model.Registration, error) {
	reg, err := scanRegistration(r.db.Pool.QueryRow(ctx,
		"SELECT "+registrationColumns+" FROM tbl_registration WHERE user_id = $1 AND event_id = $2",
		userID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, ErrRegistrationNotFound
		}
		return model.Registration{}, err
	}
	return reg, nil
}

func (r *PostgresRepository) GetRegistrationByID(ctx context.Context, id uuid.UUID) (model.Registration, error) {
	reg, err := scanRegistration(r.db.Pool.QueryRow(ctx,
		"SELECT "+registrationColumns+" FROM tbl_registration WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, ErrRegistrationNotFound
		}
		return model.Registration{}, err
	}
	return reg, nil
}

// SubmitHours re-opens the row for review: approved hours are cleared and
// status snaps back to registered, except for cancelled rows, which keep
// their status while the hour fields are still updated.
func (r *PostgresRepository) SubmitHours(ctx context.Context, id uuid.UUID, selfHours, extraHours float64, extraDesc *string, submittedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tbl_registration
		   SET self_hours = $1,
		       extra_hours = $2,
		       extra_desc = $3,
		       submitted_at = $4,
		       approved_hours = NULL,
		       status = CASE WHEN status = 'cancelled' THEN status ELSE 'registered' END
		 WHERE id = $5`,
		selfHours, extraHours, extraDesc, submittedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PostgresRepository) ApproveHours(ctx context.Context, id uuid.UUID, total float64, approvedBy uuid.UUID, approvedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tbl_registration
		   SET approved_hours = $1,
		       approved_by = $2,
		       approved_at = $3,
		       hours = $1,
		       status = CASE WHEN status = 'cancelled' THEN status ELSE 'attended' END
		 WHERE id = $4`,
		total, approvedBy, approvedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// RejectHours wipes the submission. approved_by survives the reset so the
// ledger keeps who last touched the row.
func (r *PostgresRepository) RejectHours(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tbl_registration
		   SET status = 'cancelled',
		       hours = 0,
		       self_hours = NULL,
		       extra_hours = NULL,
		       extra_desc = NULL,
		       submitted_at = NULL,
		       approved_hours = NULL,
		       approved_at = NULL
		 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAttendance(ctx context.Context, id uuid.UUID, status model.RegistrationStatus, hours float64) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE tbl_registration SET status = $1, hours = $2 WHERE id = $3", status, hours, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PostgresRepository) RegisteredCount(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM tbl_registration WHERE event_id = $1 AND status <> 'cancelled'", eventID).
		Scan(&count)
	return count, err
}

func (r *PostgresRepository) TotalHoursForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(hours), 0) FROM tbl_registration WHERE user_id = $1", userID).
		Scan(&total)
	return total, err
}

func (r *PostgresRepository) RegistrationsForUser(ctx context.Context, userID uuid.UUID) ([]model.VolunteerRegistration, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+registrationColumnsR+`, e.title, e.event_date, e.location
		  FROM tbl_registration r
		  JOIN tbl_event e ON e.id = r.event_id
		 WHERE r.user_id = $1
		 ORDER BY e.event_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []model.VolunteerRegistration
	for rows.Next() {
		var vr model.VolunteerRegistration
		err := rows.Scan(&vr.ID, &vr.UserID, &vr.EventID, &vr.Status, &vr.SelfHours, &vr.ExtraHours,
			&vr.ExtraDesc, &vr.SubmittedAt, &vr.ApprovedHours, &vr.ApprovedBy, &vr.ApprovedAt,
			&vr.Hours, &vr.RegisteredAt, &vr.EventTitle, &vr.EventDate, &vr.EventLocation)
		if err != nil {
			return nil, err
		}
		regs = append(regs, vr)
	}
	return regs, rows.Err()
}

func (r *PostgresRepository) PendingSubmissions(ctx context.Context) ([]model.PendingSubmission, error) {
	return r.querySubmissions(ctx, `
		SELECT `+registrationColumnsR+`, u.name, u.email, e.title
		  FROM tbl_registration r
		  JOIN tbl_user u ON u.id = r.user_id
		  JOIN tbl_event e ON e.id = r.event_id
		 WHERE r.submitted_at IS NOT NULL AND r.approved_hours IS NULL
		 ORDER BY r.submitted_at DESC`)
}

func (r *PostgresRepository) LatestRegistrations(ctx context.Context, limit int) ([]model.PendingSubmission, error) {
	return r.querySubmissions(ctx, `
		SELECT `+registrationColumnsR+`, u.name, u.email, e.title
		  FROM tbl_registration r
		  JOIN tbl_user u ON u.id = r.user_id
		  JOIN tbl_event e ON e.id = r.event_id
		 ORDER BY r.registered_at DESC
		 LIMIT $1`, limit)
}

func (r *PostgresRepository) querySubmissions(ctx context.Context, query string, args ...any) ([]model.PendingSubmission, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.PendingSubmission
	for rows.Next() {
		var ps model.PendingSubmission
		err := rows.Scan(&ps.ID, &ps.UserID, &ps.EventID, &ps.Status, &ps.SelfHours, &ps.ExtraHours,
			&ps.ExtraDesc, &ps.SubmittedAt, &ps.ApprovedHours, &ps.ApprovedBy, &ps.ApprovedAt,
			&ps.Hours, &ps.RegisteredAt, &ps.VolunteerName, &ps.VolunteerEmail, &ps.EventTitle)
		if err != nil {
			return nil, err
		}
		subs = append(subs, ps)
	}
	return subs, rows.Err()
}

func (r *PostgresRepository) AdminStats(ctx context.Context) (model.AdminStats, error) {
	var stats model.AdminStats

	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM tbl_user WHERE role = 'volunteer'").
		Scan(&stats.Volunteers)
	if err != nil {
		return model.AdminStats{}, err
	}

	err = r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM tbl_event").Scan(&stats.Events)
	if err != nil {
		return model.AdminStats{}, err
	}

	err = r.db.Pool.QueryRow(ctx, "SELECT COALESCE(SUM(hours), 0) FROM tbl_registration").
		Scan(&stats.TotalHours)
	if err != nil {
		return model.AdminStats{}, err
	}

	return stats, nil
}

const recordQuery = `
	SELECT ` + registrationColumnsR + `,
	       u.name, u.email, e.title, e.event_date, e.start_at, e.end_at
	  FROM tbl_registration r
	  JOIN tbl_user u ON u.id = r.user_id
	  JOIN tbl_event e ON e.id = r.event_id`

func (r *PostgresRepository) AllRegistrationRecords(ctx context.Context) ([]model.RegistrationRecord, error) {
	return r.queryRecords(ctx, recordQuery+" ORDER BY e.event_date DESC, u.name ASC")
}

func (r *PostgresRepository) ApprovedRegistrationRecords(ctx context.Context) ([]model.RegistrationRecord, error) {
	return r.queryRecords(ctx, recordQuery+" WHERE r.approved_hours IS NOT NULL ORDER BY r.approved_at DESC")
}

func (r *PostgresRepository) GetRegistrationRecord(ctx context.Context, id uuid.UUID) (model.RegistrationRecord, error) {
	records, err := r.queryRecords(ctx, recordQuery+" WHERE r.id = $1", id)
	if err != nil {
		return model.RegistrationRecord{}, err
	}
	if len(records) == 0 {
		return model.RegistrationRecord{}, ErrRegistrationNotFound
	}
	return records[0], nil
}

func (r *PostgresRepository) queryRecords(ctx context.Context, query string, args ...any) ([]model.RegistrationRecord, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RegistrationRecord
	for rows.Next() {
		var rec model.RegistrationRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.EventID, &rec.Status, &rec.SelfHours, &rec.ExtraHours,
			&rec.ExtraDesc, &rec.SubmittedAt, &rec.ApprovedHours, &rec.ApprovedBy, &rec.ApprovedAt,
			&rec.Hours, &rec.RegisteredAt, &rec.VolunteerName, &rec.VolunteerEmail, &rec.EventTitle,
			&rec.EventDate, &rec.EventStart, &rec.EventEnd)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
