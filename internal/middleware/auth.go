package middleware

import (
	"volunteerhub/internal/model"
	"volunteerhub/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireUser gates volunteer routes. The signed-in user id lands in Locals
// so handlers never reach into the session themselves.
func RequireUser(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := sessions.UserID(c)
		if !ok {
			if err := sessions.Flash(c, T(c, "need_login")); err != nil {
				return err
			}
			return c.Redirect("/login?next="+c.Path(), fiber.StatusFound)
		}

		c.Locals("user_id", userID)
		if role, ok := sessions.Role(c); ok {
			c.Locals("role", role)
		}

		return c.Next()
	}
}

// RequireAdmin gates admin routes; non-admins are bounced to the home page
// with a notice, mirroring the soft-error policy of the rest of the app.
func RequireAdmin(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := sessions.Role(c)
		if !ok || role != model.RoleAdmin {
			if err := sessions.Flash(c, T(c, "admin_needed")); err != nil {
				return err
			}
			return c.Redirect("/", fiber.StatusFound)
		}

		userID, ok := sessions.UserID(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}
		c.Locals("user_id", userID)
		c.Locals("role", role)

		return c.Next()
	}
}

// UserID returns the authenticated user set by RequireUser/RequireAdmin.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func Role(c *fiber.Ctx) model.Role {
	if role, ok := c.Locals("role").(model.Role); ok {
		return role
	}
	return model.RoleVolunteer
}
