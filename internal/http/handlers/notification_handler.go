package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"autocare/internal/api"
	"autocare/internal/domain"
	"autocare/internal/notify"
	"autocare/internal/validate"
)

// NotificationHandler exposes the two polling feeds. Each active session
// gets its own feed, started on first access and dropped on sign-out.
type NotificationHandler struct {
	API    *api.Client
	Feeds  *notify.Registry
	Secret string
}

func (h *NotificationHandler) userFeed(sid string, u *domain.User) *notify.Feed {
	token := u.Token
	return h.Feeds.Feed("user/"+sid,
		func(ctx context.Context) ([]domain.Notification, error) {
			return h.API.ListNotifications(ctx, token)
		},
		func(ctx context.Context, id string) error {
			return h.API.MarkNotificationRead(ctx, token, id)
		},
	)
}

func (h *NotificationHandler) adminFeed(sid string, a *domain.AdminProfile) *notify.Feed {
	token := a.Token
	return h.Feeds.Feed("admin/"+sid,
		func(ctx context.Context) ([]domain.Notification, error) {
			return h.API.ListAdminNotifications(ctx, token)
		},
		func(ctx context.Context, id string) error {
			return h.API.MarkNotificationRead(ctx, token, id)
		},
	)
}

// List renders the customer notification page.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/signin")
	}
	feed := h.userFeed(SID(c, h.Secret), u)
	return render(c, "notifications", fiber.Map{"Notifications": feed.Items(), "Unread": feed.Unread()})
}

// Poll is the JSON endpoint the page's 30-second timer hits.
func (h *NotificationHandler) Poll(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signed out"})
	}
	feed := h.userFeed(SID(c, h.Secret), u)
	return c.JSON(fiber.Map{"notifications": feed.Items(), "unread": feed.Unread()})
}

// MarkRead is optimistic: the local flag flips first and a repeat call
// on the same id is a quiet no-op.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/signin")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid notification id")
	}
	feed := h.userFeed(SID(c, h.Secret), u)
	feed.MarkRead(c.Context(), id)
	if c.Get("Accept") == "application/json" {
		return c.JSON(fiber.Map{"ok": true})
	}
	return c.Redirect("/notifications")
}

// AdminList renders the admin feed inside the dashboard.
func (h *NotificationHandler) AdminList(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	if a == nil {
		return c.Redirect("/admin/signin")
	}
	feed := h.adminFeed(SID(c, h.Secret), a)
	return c.JSON(fiber.Map{"notifications": feed.Items(), "unread": feed.Unread()})
}

func (h *NotificationHandler) AdminMarkRead(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	if a == nil {
		return c.Redirect("/admin/signin")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid notification id")
	}
	feed := h.adminFeed(SID(c, h.Secret), a)
	feed.MarkRead(c.Context(), id)
	return c.Redirect("/admin")
}
