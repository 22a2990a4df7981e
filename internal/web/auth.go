package web

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
)

func (h *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	return h.renderJSON(c, fiber.Map{"page": "register"})
}

// Register creates an account and signs the new user in. The role comes from
// the sign-up form; anything unknown falls back to volunteer.
func (h *Handler) Register(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(c.FormValue("email")))
	password := c.FormValue("password")

	if name == "" || email == "" || password == "" {
		return h.flashRedirect(c, "fill_required", "/register")
	}

	if err := h.limiter.CheckSignup(c.UserContext(), email); err != nil {
		if errors.Is(err, service.ErrTooManyAttempts) {
			return h.flashRedirect(c, "too_many_attempts", "/register")
		}
		h.logger.Error("Signup rate limit check failed", "error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		return h.flashRedirect(c, "server_error", "/register")
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.ParseRole(c.FormValue("role")),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.repo.CreateUser(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return h.flashRedirect(c, "email_taken", "/register")
		}
		h.logger.Error("Failed to create user", "error", err)
		return h.flashRedirect(c, "server_error", "/register")
	}

	if err := h.sessions.LogIn(c, user); err != nil {
		h.logger.Error("Failed to start session", "error", err)
		return h.flashRedirect(c, "server_error", "/login")
	}

	return h.flashRedirect(c, "welcome", "/")
}

func (h *Handler) ShowLoginPage(c *fiber.Ctx) error {
	return h.renderJSON(c, fiber.Map{"page": "login"})
}

// Login authenticates by email and password. Attempts are rate limited per
// email; a successful login resets the counter.
func (h *Handler) Login(c *fiber.Ctx) error {
	email := strings.TrimSpace(strings.ToLower(c.FormValue("email")))
	password := c.FormValue("password")

	if err := h.limiter.CheckLogin(c.UserContext(), email); err != nil {
		if errors.Is(err, service.ErrTooManyAttempts) {
			return h.flashRedirect(c, "too_many_attempts", "/login")
		}
		h.logger.Error("Login rate limit check failed", "error", err)
	}

	user, err := h.repo.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			h.logger.Error("Failed to look up user", "error", err)
		}
		return h.flashRedirect(c, "invalid_credentials", "/login")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return h.flashRedirect(c, "invalid_credentials", "/login")
	}

	if err := h.limiter.ResetLogin(c.UserContext(), email); err != nil {
		h.logger.Error("Failed to reset login counter", "error", err)
	}

	if err := h.sessions.LogIn(c, user); err != nil {
		h.logger.Error("Failed to start session", "error", err)
		return h.flashRedirect(c, "server_error", "/login")
	}

	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	return h.flashRedirect(c, "welcome", next)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.LogOut(c); err != nil {
		h.logger.Error("Failed to destroy session", "error", err)
	}
	return c.Redirect("/", fiber.StatusFound)
}
