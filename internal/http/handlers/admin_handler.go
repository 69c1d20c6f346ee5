package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"autocare/internal/domain"
	applog "autocare/internal/log"
	"autocare/internal/notify"
	"autocare/internal/store"
	"autocare/internal/validate"
)

const statsInterval = 60 * time.Second

// AdminHandler serves the dashboard: bookings with status and progress
// controls, service management, and review approval.
type AdminHandler struct {
	Data   *store.Store
	Feeds  *notify.Registry
	Secret string
}

// Dashboard renders everything in one page, tabbed client-side. A
// 60-second background task keeps the booking list warm while this
// admin session lives.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	if a == nil {
		return c.Redirect("/admin/signin")
	}
	sid := SID(c, h.Secret)
	token := a.Token
	h.Feeds.EnsureTask("stats/"+sid, statsInterval, func(ctx context.Context) {
		h.Data.ListBookings(ctx, token)
	})

	bookings := h.Data.ListBookings(c.Context(), a.Token)
	services := h.Data.ListServices(c.Context())
	reviews := h.Data.ListReviews(c.Context())
	var pendingReviews []domain.Review
	for _, r := range reviews {
		if !r.Approved {
			pendingReviews = append(pendingReviews, r)
		}
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Bookings":       bookings,
		"Services":       services,
		"PendingReviews": pendingReviews,
		"Stats":          h.Data.StatsSnapshot(),
		"IconKeys":       domain.IconKeys(),
		"Statuses":       []string{domain.StatusPending, domain.StatusApproved, domain.StatusCompleted, domain.StatusRejected},
	})
}

// POST /admin/bookings/:id/status
func (h *AdminHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	id, ok := validate.ID(c.Params("id"))
	if a == nil || !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	status := c.FormValue("status")
	b, err := h.Data.SetBookingStatus(c.Context(), a.Token, id, status)
	if err != nil {
		applog.Error(c, "admin.booking.status.fail", err, map[string]any{"booking_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not update status")
	}
	applog.Audit(c, "admin.booking.status", map[string]any{"booking_id": id, "status": status, "sync": string(b.Sync)})
	return c.Redirect("/admin")
}

// POST /admin/bookings/:id/progress
func (h *AdminHandler) UpdateBookingProgress(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	id, ok := validate.ID(c.Params("id"))
	if a == nil || !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	progress, err := strconv.Atoi(c.FormValue("progress"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid progress")
	}
	stage := strings.TrimSpace(c.FormValue("stage"))
	if _, err := h.Data.SetBookingProgress(c.Context(), a.Token, id, progress, stage); err != nil {
		applog.Error(c, "admin.booking.progress.fail", err, map[string]any{"booking_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not update progress")
	}
	applog.Audit(c, "admin.booking.progress", map[string]any{"booking_id": id, "progress": progress, "stage": stage})
	return c.Redirect("/admin")
}

// POST /admin/services
func (h *AdminHandler) CreateService(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	if a == nil {
		return c.Redirect("/admin/signin")
	}
	name, okN := validate.Name(c.FormValue("name"))
	price, errP := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(c.FormValue("price")), "$"), 64)
	if !okN || errP != nil || price < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "service"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid service input")
	}
	discount, _ := strconv.ParseFloat(c.FormValue("discount"), 64)
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}
	svc := h.Data.CreateService(c.Context(), a.Token, domain.Service{
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		Category:    c.FormValue("category"),
		Discount:    discount,
		Featured:    c.FormValue("featured") == "on",
		Duration:    c.FormValue("duration"),
		Icon:        c.FormValue("icon"),
	})
	applog.Audit(c, "admin.service.create", map[string]any{"service_id": svc.ID, "sync": string(svc.Sync)})
	return c.Redirect("/admin")
}

// POST /admin/services/:id/delete
func (h *AdminHandler) DeleteService(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	id, ok := validate.ID(c.Params("id"))
	if a == nil || !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	if err := h.Data.DeleteService(c.Context(), a.Token, id); err != nil {
		applog.Error(c, "admin.service.delete.fail", err, map[string]any{"service_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not delete service")
	}
	applog.Audit(c, "admin.service.delete", map[string]any{"service_id": id})
	return c.Redirect("/admin")
}

// POST /admin/reviews/:id/approve
func (h *AdminHandler) ApproveReview(c *fiber.Ctx) error {
	a, _ := c.Locals("admin").(*domain.AdminProfile)
	id, ok := validate.ID(c.Params("id"))
	if a == nil || !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id")
	}
	r, err := h.Data.ApproveReview(c.Context(), a.Token, id)
	if err != nil {
		applog.Error(c, "admin.review.approve.fail", err, map[string]any{"review_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not approve review")
	}
	applog.Audit(c, "admin.review.approve", map[string]any{"review_id": r.ID, "sync": string(r.Sync)})
	return c.Redirect("/admin")
}
