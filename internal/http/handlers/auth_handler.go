package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"autocare/internal/api"
	applog "autocare/internal/log"
	"autocare/internal/notify"
	"autocare/internal/session"
	"autocare/internal/validate"
)

type AuthHandler struct {
	Sessions *session.Manager
	Feeds    *notify.Registry
	Secret   string
}

func (h *AuthHandler) SignInForm(c *fiber.Ctx) error {
	return render(c, "signin", fiber.Map{
		"Msg":    c.Query("msg"),
		"Return": c.Query("return"),
	})
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	email, okE := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")
	returnTo := safeReturn(c.FormValue("return"))
	if !okE || !validate.Password(pass) {
		applog.Security(c, "auth.signin.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("signin", fiber.Map{
			"Err": "Invalid email or password", "Return": returnTo, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	u, err := h.Sessions.SignIn(c.Context(), sid, api.Credentials{Email: email, Password: pass})
	if err != nil {
		applog.Security(c, "auth.signin.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("signin", fiber.Map{
			"Err": "Invalid email or password", "Return": returnTo, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	applog.Audit(c, "auth.signin.success", map[string]any{"user_id": u.ID})
	if returnTo == "" {
		returnTo = "/"
	}
	return c.Redirect(returnTo)
}

func (h *AuthHandler) SignUpForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Errors": map[string]string{}})
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	name, okN := validate.Name(c.FormValue("name"))
	email, okE := validate.Email(c.FormValue("email"))
	phone, okP := validate.Phone(c.FormValue("phone"))
	pass := c.FormValue("password")

	errs := map[string]string{}
	if !okN {
		errs["name"] = "Name is required"
	}
	if !okE {
		errs["email"] = "A valid email is required"
	}
	if !okP {
		errs["phone"] = "Phone must be 10 digits"
	}
	if !validate.Password(pass) {
		errs["password"] = "Password must be 6-64 characters"
	}
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("signup", fiber.Map{
			"Errors": errs, "Name": name, "Email": email, "Phone": phone, "CSRFToken": c.Cookies("csrf_"),
		})
	}

	u, err := h.Sessions.SignUp(c.Context(), sid, api.SignUpInput{Name: name, Email: email, Phone: phone, Password: pass})
	if err != nil {
		applog.Error(c, "auth.signup.fail", err, map[string]any{"email": email})
		return c.Status(fiber.StatusBadGateway).Render("signup", fiber.Map{
			"Err": "Could not create your account right now. Please try again.",
			"Errors": map[string]string{}, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	applog.Audit(c, "auth.signup.success", map[string]any{"user_id": u.ID})
	return c.Redirect("/")
}

// SignOut ends the customer session only; an admin session under the
// same sid is untouched.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if sid := SID(c, h.Secret); sid != "" {
		h.Sessions.SignOut(sid)
		h.Feeds.Drop("user/" + sid)
		applog.Audit(c, "auth.signout", map[string]any{"sid": sid})
	}
	return c.Redirect("/")
}

func (h *AuthHandler) AdminSignInForm(c *fiber.Ctx) error {
	return render(c, "admin_signin", fiber.Map{})
}

func (h *AuthHandler) AdminSignIn(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	email, okE := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")
	if !okE || !validate.Password(pass) {
		applog.Security(c, "auth.admin.signin.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("admin_signin", fiber.Map{
			"Err": "Invalid credentials", "CSRFToken": c.Cookies("csrf_"),
		})
	}
	a, err := h.Sessions.AdminSignIn(c.Context(), sid, api.Credentials{Email: email, Password: pass})
	if err != nil {
		applog.Security(c, "auth.admin.signin.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("admin_signin", fiber.Map{
			"Err": "Invalid credentials", "CSRFToken": c.Cookies("csrf_"),
		})
	}
	applog.Audit(c, "auth.admin.signin.success", map[string]any{"admin": a.Name})
	return c.Redirect("/admin")
}

func (h *AuthHandler) AdminSignOut(c *fiber.Ctx) error {
	if sid := SID(c, h.Secret); sid != "" {
		h.Sessions.AdminSignOut(sid)
		h.Feeds.Drop("admin/" + sid)
		h.Feeds.Drop("stats/" + sid)
		applog.Audit(c, "auth.admin.signout", map[string]any{"sid": sid})
	}
	return c.Redirect("/")
}

// safeReturn keeps redirects on-site.
func safeReturn(p string) string {
	if strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") {
		return p
	}
	return ""
}
