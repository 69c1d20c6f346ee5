package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"autocare/internal/session"
)

// SID recovers the session id from the signed cookie; "" when absent or
// tampered with.
func SID(c *fiber.Ctx, secret string) string {
	raw := c.Cookies("sid")
	if raw == "" {
		return ""
	}
	sid, err := session.ParseSID(secret, raw)
	if err != nil {
		return ""
	}
	return sid
}

// EnsureSID returns the visitor's session id, issuing a fresh signed
// cookie when none exists.
func EnsureSID(c *fiber.Ctx, secret string) string {
	if sid := SID(c, secret); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	signed, err := session.SignSID(secret, sid)
	if err != nil {
		return sid
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    signed,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // set true behind TLS
	})
	return sid
}
