package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"volunteerhub/internal/i18n"
	"volunteerhub/internal/middleware"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
	"volunteerhub/internal/session"
	"volunteerhub/internal/storage"
)

// Handler carries the web layer's dependencies. POST actions answer with a
// flash message and a redirect; GET projections answer with JSON.
type Handler struct {
	logger        *slog.Logger
	repo          repository.Repository
	events        *service.EventService
	registrations *service.RegistrationService
	limiter       *service.RateLimiter
	sessions      *session.Manager
	certificates  storage.Storage
}

func NewHandler(
	logger *slog.Logger,
	repo repository.Repository,
	events *service.EventService,
	registrations *service.RegistrationService,
	limiter *service.RateLimiter,
	sessions *session.Manager,
	certificates storage.Storage,
) *Handler {
	return &Handler{
		logger:        logger,
		repo:          repo,
		events:        events,
		registrations: registrations,
		limiter:       limiter,
		sessions:      sessions,
		certificates:  certificates,
	}
}

// flashRedirect stores a localized notice and bounces the browser.
func (h *Handler) flashRedirect(c *fiber.Ctx, key, location string) error {
	if err := h.sessions.Flash(c, middleware.T(c, key)); err != nil {
		h.logger.Error("Failed to store flash message", "error", err)
	}
	return c.Redirect(location, fiber.StatusFound)
}

// flashRedirectMessage is flashRedirect for pre-formatted messages.
func (h *Handler) flashRedirectMessage(c *fiber.Ctx, message, location string) error {
	if err := h.sessions.Flash(c, message); err != nil {
		h.logger.Error("Failed to store flash message", "error", err)
	}
	return c.Redirect(location, fiber.StatusFound)
}

// renderJSON answers a GET projection, attaching the pending flash and the
// resolved language so the page can display both.
func (h *Handler) renderJSON(c *fiber.Ctx, data fiber.Map) error {
	data["lang"] = middleware.GetLang(c).String()
	if flash := h.sessions.PopFlash(c); flash != "" {
		data["flash"] = flash
	}
	return c.JSON(data)
}

// SetLanguage persists the chosen UI language and returns to the page the
// user came from.
func (h *Handler) SetLanguage(c *fiber.Ctx) error {
	lang, err := i18n.ParseLanguage(c.Params("lang"))
	if err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	if err := h.sessions.SetLang(c, lang.String()); err != nil {
		h.logger.Error("Failed to persist language", "error", err)
	}

	referer := c.Get("Referer")
	if referer == "" {
		referer = "/"
	}
	return c.Redirect(referer, fiber.StatusFound)
}
