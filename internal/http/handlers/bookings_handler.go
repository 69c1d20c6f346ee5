package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"autocare/internal/api"
	"autocare/internal/domain"
	applog "autocare/internal/log"
	"autocare/internal/store"
	"autocare/internal/validate"
)

// BookingsHandler serves the customer's my-bookings area: the list,
// payment, and review submission.
type BookingsHandler struct {
	Data   *store.Store
	Secret string
}

func (h *BookingsHandler) MyBookings(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect(SignInRedirect("Please sign in to continue", "/my-bookings"))
	}
	bookings := h.Data.MyBookings(c.Context(), u.Token, u.ID)
	return render(c, "my_bookings", fiber.Map{"Bookings": bookings})
}

// Pay marks a booking paid. The invariant lives in the store: only
// Pending or Completed bookings may be paid.
func (h *BookingsHandler) Pay(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/signin")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid booking id")
	}
	b, err := h.Data.SetPaymentPaid(c.Context(), u.Token, id)
	if err != nil {
		if errors.Is(err, store.ErrNotPayable) {
			applog.Security(c, "booking.pay.blocked", map[string]any{"booking_id": id})
			return c.Status(fiber.StatusConflict).SendString("This booking cannot be paid right now")
		}
		applog.Error(c, "booking.pay.fail", err, map[string]any{"booking_id": id})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Booking not found"})
	}
	applog.Audit(c, "booking.pay", map[string]any{"booking_id": id, "sync": string(b.Sync)})
	return c.Redirect("/my-bookings")
}

// SubmitReview accepts a rating and comment for a completed service.
// The review stays pending until an admin approves it.
func (h *BookingsHandler) SubmitReview(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/signin")
	}
	rating, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil || !validate.Rating(rating) {
		applog.Security(c, "validation.fail", map[string]any{"field": "rating"})
		return c.Status(fiber.StatusBadRequest).SendString("rating must be between 1 and 5")
	}
	comment := c.FormValue("comment")
	if len(comment) > 500 {
		comment = comment[:500]
	}
	r := h.Data.CreateReview(c.Context(), u.Token, api.ReviewInput{
		Author:      u.Name,
		ServiceType: c.FormValue("service_type"),
		BookingID:   c.FormValue("booking_id"),
		Rating:      rating,
		Comment:     comment,
	})
	applog.Audit(c, "review.create", map[string]any{"review_id": r.ID, "sync": string(r.Sync)})
	return c.Redirect("/my-bookings")
}
