package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"volunteerhub/internal/middleware"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
)

type submissionView struct {
	ID             uuid.UUID                `json:"id"`
	VolunteerName  string                   `json:"volunteer_name"`
	VolunteerEmail string                   `json:"volunteer_email"`
	EventTitle     string                   `json:"event_title"`
	Status         model.RegistrationStatus `json:"status"`
	SelfHours      *float64                 `json:"self_hours"`
	ExtraHours     *float64                 `json:"extra_hours"`
	ExtraDesc      *string                  `json:"extra_desc"`
	ApprovedHours  *float64                 `json:"approved_hours"`
	Hours          float64                  `json:"hours"`
}

func toSubmissionView(sub model.PendingSubmission) submissionView {
	return submissionView{
		ID:             sub.ID,
		VolunteerName:  sub.VolunteerName,
		VolunteerEmail: sub.VolunteerEmail,
		EventTitle:     sub.EventTitle,
		Status:         sub.Status,
		SelfHours:      sub.SelfHours,
		ExtraHours:     sub.ExtraHours,
		ExtraDesc:      sub.ExtraDesc,
		ApprovedHours:  sub.ApprovedHours,
		Hours:          sub.Hours,
	}
}

// ShowAdminPage aggregates everything the admin screen shows: headline
// stats, the latest registrations, all events, and the pending queue.
func (h *Handler) ShowAdminPage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	stats, err := h.repo.AdminStats(ctx)
	if err != nil {
		h.logger.Error("Failed to load admin stats", "error", err)
		return h.flashRedirect(c, "server_error", "/")
	}

	latest, err := h.repo.LatestRegistrations(ctx, 10)
	if err != nil {
		h.logger.Error("Failed to load latest registrations", "error", err)
	}

	events, err := h.events.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list events", "error", err)
	}

	pending, err := h.repo.PendingSubmissions(ctx)
	if err != nil {
		h.logger.Error("Failed to load pending submissions", "error", err)
	}

	eventViews := make([]eventView, len(events))
	for i, event := range events {
		eventViews[i] = toEventView(event)
	}
	latestViews := make([]submissionView, len(latest))
	for i, sub := range latest {
		latestViews[i] = toSubmissionView(sub)
	}
	pendingViews := make([]submissionView, len(pending))
	for i, sub := range pending {
		pendingViews[i] = toSubmissionView(sub)
	}

	return h.renderJSON(c, fiber.Map{
		"stats": fiber.Map{
			"volunteers":  stats.Volunteers,
			"events":      stats.Events,
			"total_hours": stats.TotalHours,
		},
		"latest_registrations": latestViews,
		"events":               eventViews,
		"pending_submissions":  pendingViews,
	})
}

// CreateEvent stores a new event from the admin form and confirms with the
// computed duration.
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	input := service.CreateEventInput{
		Title:       c.FormValue("title"),
		StartAt:     c.FormValue("start_at"),
		EndAt:       c.FormValue("end_at"),
		Location:    c.FormValue("location"),
		Description: c.FormValue("description"),
		Capacity:    c.FormValue("capacity"),
	}

	event, duration, err := h.events.Create(c.UserContext(), input, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return h.flashRedirect(c, "fill_required", "/admin")
		}
		h.logger.Error("Failed to create event", "error", err)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	message := fmt.Sprintf(middleware.T(c, "event_created_duration"), event.Title, duration)
	return h.flashRedirectMessage(c, message, "/admin")
}

func (h *Handler) ShowEditEventPage(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/admin")
	}

	event, err := h.events.Get(c.UserContext(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return h.flashRedirect(c, "event_not_found", "/admin")
		}
		h.logger.Error("Failed to load event", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	return h.renderJSON(c, fiber.Map{"event": toEventView(event)})
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/admin")
	}

	input := service.UpdateEventInput{
		Title:       c.FormValue("title"),
		Date:        c.FormValue("date"),
		Location:    c.FormValue("location"),
		Description: c.FormValue("description"),
		Capacity:    c.FormValue("capacity"),
	}

	if err := h.events.Update(c.UserContext(), eventID, input); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return h.flashRedirect(c, "fill_required", fmt.Sprintf("/admin/events/%s/edit", eventID))
		case errors.Is(err, repository.ErrEventNotFound):
			return h.flashRedirect(c, "event_not_found", "/admin")
		default:
			h.logger.Error("Failed to update event", "error", err, "event_id", eventID)
			return h.flashRedirect(c, "server_error", "/admin")
		}
	}
	return h.flashRedirect(c, "event_updated", "/admin")
}

// DeleteEvent removes an event; its registrations cascade away with it.
func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/admin")
	}

	if err := h.events.Delete(c.UserContext(), eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return h.flashRedirect(c, "event_not_found", "/admin")
		}
		h.logger.Error("Failed to delete event", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", "/admin")
	}
	return h.flashRedirect(c, "event_deleted", "/admin")
}

// ApproveHours credits a pending submission.
func (h *Handler) ApproveHours(c *fiber.Ctx) error {
	regID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "not_found", "/admin")
	}

	if _, err := h.registrations.Approve(c.UserContext(), middleware.UserID(c), regID); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return h.flashRedirect(c, "not_found", "/admin")
		}
		h.logger.Error("Failed to approve hours", "error", err, "registration_id", regID)
		return h.flashRedirect(c, "server_error", "/admin")
	}
	return h.flashRedirect(c, "hours_approved_ok", "/admin")
}

// RejectHours resets a submission to cancelled with zero credited hours.
func (h *Handler) RejectHours(c *fiber.Ctx) error {
	regID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "not_found", "/admin")
	}

	if err := h.registrations.Reject(c.UserContext(), regID); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return h.flashRedirect(c, "not_found", "/admin")
		}
		h.logger.Error("Failed to reject hours", "error", err, "registration_id", regID)
		return h.flashRedirect(c, "server_error", "/admin")
	}
	return h.flashRedirect(c, "hours_rejected_ok", "/admin")
}

// MarkAttendance is the manual status/hours override form.
func (h *Handler) MarkAttendance(c *fiber.Ctx) error {
	regID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "not_found", "/admin")
	}

	if err := h.registrations.Mark(c.UserContext(), regID, c.FormValue("status"), c.FormValue("hours")); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return h.flashRedirect(c, "not_found", "/admin")
		}
		h.logger.Error("Failed to mark attendance", "error", err, "registration_id", regID)
		return h.flashRedirect(c, "server_error", "/admin")
	}
	return h.flashRedirect(c, "reg_updated", "/admin")
}
