package session

import (
	"volunteerhub/internal/config"
	"volunteerhub/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const (
	keyUserID = "user_id"
	keyRole   = "role"
	keyLang   = "lang"
	keyFlash  = "flash"
)

// Manager wraps the Fiber session store with the handful of typed accessors
// the handlers need: the signed-in identity, the UI language, and one-shot
// flash messages.
type Manager struct {
	store *session.Store
}

func NewManager(storage fiber.Storage, cfg config.SessionConfig) *Manager {
	store := session.New(session.Config{
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Expiration,
	})
	return &Manager{store: store}
}

func (m *Manager) LogIn(c *fiber.Ctx, user model.User) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyUserID, user.ID.String())
	sess.Set(keyRole, string(user.Role))
	return sess.Save()
}

func (m *Manager) LogOut(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

func (m *Manager) UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return uuid.Nil, false
	}
	raw, ok := sess.Get(keyUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (m *Manager) Role(c *fiber.Ctx) (model.Role, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return "", false
	}
	raw, ok := sess.Get(keyRole).(string)
	if !ok {
		return "", false
	}
	return model.Role(raw), true
}

func (m *Manager) Lang(c *fiber.Ctx) string {
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	lang, _ := sess.Get(keyLang).(string)
	return lang
}

func (m *Manager) SetLang(c *fiber.Ctx, lang string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyLang, lang)
	return sess.Save()
}

// Flash stores a one-shot notice shown on the next rendered page.
func (m *Manager) Flash(c *fiber.Ctx, message string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyFlash, message)
	return sess.Save()
}

// PopFlash returns and clears the pending notice, if any.
func (m *Manager) PopFlash(c *fiber.Ctx) string {
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	message, _ := sess.Get(keyFlash).(string)
	if message != "" {
		sess.Delete(keyFlash)
		if err := sess.Save(); err != nil {
			return message
		}
	}
	return message
}
