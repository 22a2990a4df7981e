package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
)

type eventView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartAt     string    `json:"start_at,omitempty"`
	EndAt       string    `json:"end_at,omitempty"`
	EventDate   string    `json:"event_date,omitempty"`
	Location    string    `json:"location"`
	Capacity    *int      `json:"capacity"`
	Duration    *float64  `json:"duration_hours,omitempty"`
}

func toEventView(event model.Event) eventView {
	view := eventView{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartAt:     event.StartAt,
		EndAt:       event.EndAt,
		EventDate:   event.EventDate,
		Location:    event.Location,
		Capacity:    event.Capacity,
	}
	if duration, ok := service.EventDuration(event); ok {
		view.Duration = &duration
	}
	return view
}

// ShowHomePage lists upcoming events, same projection as /events.
func (h *Handler) ShowHomePage(c *fiber.Ctx) error {
	return h.ShowEventsPage(c)
}

func (h *Handler) ShowEventsPage(c *fiber.Ctx) error {
	events, err := h.events.List(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list events", "error", err)
		return h.flashRedirect(c, "server_error", "/")
	}

	views := make([]eventView, len(events))
	for i, event := range events {
		views[i] = toEventView(event)
	}
	return h.renderJSON(c, fiber.Map{"events": views})
}

// ShowEventPage renders one event with its live registration count and, when
// the caller is signed in, their own registration state.
func (h *Handler) ShowEventPage(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/events")
	}

	event, err := h.events.Get(c.UserContext(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return h.flashRedirect(c, "event_not_found", "/events")
		}
		h.logger.Error("Failed to load event", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", "/events")
	}

	count, err := h.repo.RegisteredCount(c.UserContext(), eventID)
	if err != nil {
		h.logger.Error("Failed to count registrations", "error", err, "event_id", eventID)
	}

	data := fiber.Map{
		"event":      toEventView(event),
		"registered": count,
	}

	if userID, ok := h.sessions.UserID(c); ok {
		reg, err := h.registrations.Get(c.UserContext(), userID, eventID)
		switch {
		case err == nil:
			data["my_registration"] = fiber.Map{
				"id":     reg.ID,
				"status": reg.Status,
				"hours":  reg.Hours,
			}
		case !errors.Is(err, repository.ErrRegistrationNotFound):
			h.logger.Error("Failed to load registration", "error", err, "event_id", eventID)
		}
	}

	return h.renderJSON(c, data)
}
