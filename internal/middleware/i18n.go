package middleware

import (
	"strings"

	"volunteerhub/internal/i18n"
	"volunteerhub/internal/session"

	"github.com/gofiber/fiber/v2"
)

// I18n resolves the request language once per request and stores it in
// Fiber's Locals: session first, then ?lang=, then Accept-Language, then
// the site default (Arabic).
func I18n(translator *i18n.Translator, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := sessions.Lang(c)
		if raw == "" {
			raw = c.Query("lang")
		}
		if raw == "" {
			if strings.HasPrefix(c.Get("Accept-Language"), "en") {
				raw = "en"
			}
		}

		lang, err := i18n.ParseLanguage(raw)
		if err != nil {
			lang = i18n.AR
		}

		c.Locals("lang", lang)
		c.Locals("translator", translator)

		return c.Next()
	}
}

func GetLang(c *fiber.Ctx) i18n.Language {
	if lang, ok := c.Locals("lang").(i18n.Language); ok {
		return lang
	}
	return i18n.AR
}

// T translates a key in the request's language.
func T(c *fiber.Ctx, key string) string {
	if translator, ok := c.Locals("translator").(*i18n.Translator); ok {
		return translator.T(GetLang(c), key)
	}
	return key
}
