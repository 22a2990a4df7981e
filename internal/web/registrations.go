package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"volunteerhub/internal/middleware"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
)

// RegisterForEvent signs the caller up for an event. Full events and double
// registrations come back as notices, never errors.
func (h *Handler) RegisterForEvent(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/events")
	}
	detailPath := fmt.Sprintf("/events/%s", eventID)

	_, err = h.registrations.Register(c.UserContext(), middleware.UserID(c), eventID)
	switch {
	case err == nil:
		return h.flashRedirect(c, "registered_ok", detailPath)
	case errors.Is(err, repository.ErrEventNotFound):
		return h.flashRedirect(c, "event_not_found", "/events")
	case errors.Is(err, repository.ErrEventFull):
		return h.flashRedirect(c, "event_full", detailPath)
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return h.flashRedirect(c, "already_registered", detailPath)
	default:
		h.logger.Error("Failed to register for event", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", detailPath)
	}
}

// CancelRegistration flips the caller's registration to cancelled. Cancelling
// something that was never registered is a no-op with the same notice.
func (h *Handler) CancelRegistration(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/events")
	}

	if err := h.registrations.Cancel(c.UserContext(), middleware.UserID(c), eventID); err != nil {
		h.logger.Error("Failed to cancel registration", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", fmt.Sprintf("/events/%s", eventID))
	}
	return h.flashRedirect(c, "cancelled_ok", fmt.Sprintf("/events/%s", eventID))
}

// SubmitHours records the caller's worked hours for an event.
func (h *Handler) SubmitHours(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/events")
	}

	err = h.registrations.SubmitHours(
		c.UserContext(),
		middleware.UserID(c),
		eventID,
		c.FormValue("extra_hours"),
		c.FormValue("extra_desc"),
	)
	switch {
	case err == nil:
		return h.flashRedirect(c, "hours_submitted_ok", "/dashboard")
	case errors.Is(err, repository.ErrEventNotFound):
		return h.flashRedirect(c, "event_not_found", "/events")
	case errors.Is(err, repository.ErrRegistrationNotFound):
		return h.flashRedirect(c, "not_registered_for_event", fmt.Sprintf("/events/%s", eventID))
	default:
		h.logger.Error("Failed to submit hours", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", "/dashboard")
	}
}

type dashboardRegistrationView struct {
	ID            uuid.UUID                `json:"id"`
	EventTitle    string                   `json:"event_title"`
	EventDate     string                   `json:"event_date"`
	EventLocation string                   `json:"event_location"`
	Status        model.RegistrationStatus `json:"status"`
	SelfHours     *float64                 `json:"self_hours"`
	ExtraHours    *float64                 `json:"extra_hours"`
	ApprovedHours *float64                 `json:"approved_hours"`
	Hours         float64                  `json:"hours"`
	Approved      bool                     `json:"approved"`
}

// ShowDashboardPage is the volunteer's view of their own ledger rows and
// total credited hours.
func (h *Handler) ShowDashboardPage(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	regs, err := h.repo.RegistrationsForUser(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to load registrations", "error", err)
		return h.flashRedirect(c, "server_error", "/")
	}

	total, err := h.repo.TotalHoursForUser(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to compute total hours", "error", err)
	}

	views := make([]dashboardRegistrationView, len(regs))
	for i, reg := range regs {
		views[i] = dashboardRegistrationView{
			ID:            reg.ID,
			EventTitle:    reg.EventTitle,
			EventDate:     reg.EventDate,
			EventLocation: reg.EventLocation,
			Status:        reg.Status,
			SelfHours:     reg.SelfHours,
			ExtraHours:    reg.ExtraHours,
			ApprovedHours: reg.ApprovedHours,
			Hours:         reg.Hours,
			Approved:      reg.Approved(),
		}
	}

	return h.renderJSON(c, fiber.Map{
		"registrations": views,
		"total_hours":   total,
	})
}
