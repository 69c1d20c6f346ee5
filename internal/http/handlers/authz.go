package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "autocare/internal/log"
	"autocare/internal/session"
)

// SignInRedirect builds the /signin URL carrying a message and the path
// to return to after signing in.
func SignInRedirect(msg, returnTo string) string {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if returnTo != "" {
		q.Set("return", returnTo)
	}
	return "/signin?" + q.Encode()
}

// RequireUser gates the customer area; unauthenticated visitors are sent
// to sign-in with a return path.
func RequireUser(sessions *session.Manager, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := SID(c, secret)
		if sid == "" {
			return c.Redirect(SignInRedirect("Please sign in to continue", c.Path()))
		}
		u := sessions.Current(sid)
		if u == nil {
			return c.Redirect(SignInRedirect("Please sign in to continue", c.Path()))
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdmin gates the admin area; failures redirect to the admin
// sign-in page.
func RequireAdmin(sessions *session.Manager, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := SID(c, secret)
		if sid == "" {
			return c.Redirect("/admin/signin")
		}
		a := sessions.CurrentAdmin(sid)
		if a == nil {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Redirect("/admin/signin")
		}
		c.Locals("admin", a)
		return c.Next()
	}
}

// AttachSessions is the ambient middleware putting the current sessions
// into Locals for templates and headers.
func AttachSessions(sessions *session.Manager, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := SID(c, secret); sid != "" {
			if a := sessions.CurrentAdmin(sid); a != nil {
				c.Locals("admin", a)
			}
			if u := sessions.Current(sid); u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}
