package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"autocare/internal/booking"
	"autocare/internal/kv"
	applog "autocare/internal/log"
	"autocare/internal/session"
	"autocare/internal/store"
	"autocare/internal/validate"
)

const wizardKey = "/wizard"

// WizardHandler drives the four-step booking wizard. State lives in the
// kv store per sid so a page reload lands on the current step.
type WizardHandler struct {
	Data     *store.Store
	Sessions *session.Manager
	KV       *kv.Store
	Secret   string
}

func (h *WizardHandler) load(sid string) *booking.Wizard {
	raw, err := h.KV.Get(sid + wizardKey)
	if err != nil || raw == "" {
		return nil
	}
	var w booking.Wizard
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		_ = h.KV.Delete(sid + wizardKey)
		return nil
	}
	return &w
}

func (h *WizardHandler) save(sid string, w *booking.Wizard) {
	b, err := json.Marshal(w)
	if err != nil {
		return
	}
	_ = h.KV.Set(sid+wizardKey, string(b))
}

// Start opens the wizard for one service. Visitors without a customer
// session are sent to sign in first.
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	if h.Sessions.Current(sid) == nil {
		return c.Redirect(SignInRedirect("Please sign in to book a service", "/services"))
	}
	return h.begin(c, sid)
}

// QuickStart is the guest entry from the home page; the Details step
// collects contact info instead of the session.
func (h *WizardHandler) QuickStart(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	return h.begin(c, sid)
}

func (h *WizardHandler) begin(c *fiber.Ctx, sid string) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/services")
	}
	svc, found := h.Data.ServiceByID(c.Context(), id)
	if !found || !svc.Active {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This service is no longer available"})
	}
	w := booking.Start(svc)
	h.save(sid, w)
	applog.Info(c, "wizard.start", map[string]any{"service": svc.Name})
	return c.Redirect("/book")
}

// Current renders whatever step the wizard is on.
func (h *WizardHandler) Current(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	w := h.load(sid)
	if w == nil {
		return c.Redirect("/services")
	}
	return h.renderStep(c, w)
}

func (h *WizardHandler) renderStep(c *fiber.Ctx, w *booking.Wizard) error {
	data := fiber.Map{
		"W":      w,
		"Errors": w.Errors,
	}
	switch w.Step {
	case booking.StepSchedule:
		data["QuickDates"] = booking.QuickDates()
		data["TimeSlots"] = booking.TimeSlots
		return render(c, "book_schedule", data)
	case booking.StepDetails:
		return render(c, "book_details", data)
	case booking.StepConfirm:
		data["CardDisplay"] = booking.FormatCard(w.CardNumber)
		return render(c, "book_confirm", data)
	case booking.StepSuccess:
		return render(c, "book_success", data)
	}
	return c.Redirect("/services")
}

func (h *WizardHandler) Schedule(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	w := h.load(sid)
	if w == nil {
		return c.Redirect("/services")
	}
	ok := w.SubmitSchedule(c.FormValue("date"), c.FormValue("time"))
	h.save(sid, w)
	if !ok {
		return h.renderStep(c, w)
	}
	return c.Redirect("/book")
}

func (h *WizardHandler) Details(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	w := h.load(sid)
	if w == nil {
		return c.Redirect("/services")
	}
	authed := h.Sessions.Current(sid) != nil
	ok := w.SubmitDetails(booking.DetailsForm{
		VehicleNo:    c.FormValue("vehicle_number"),
		VehicleModel: c.FormValue("vehicle_model"),
		Method:       c.FormValue("method"),
		CardNumber:   c.FormValue("card_number"),
		CardExpiry:   c.FormValue("card_expiry"),
		CardCVV:      c.FormValue("card_cvv"),
		CardHolder:   c.FormValue("card_holder"),
		GuestName:    c.FormValue("name"),
		GuestPhone:   c.FormValue("phone"),
	}, authed)
	h.save(sid, w)
	if !ok {
		return h.renderStep(c, w)
	}
	return c.Redirect("/book")
}

func (h *WizardHandler) Back(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	w := h.load(sid)
	if w == nil {
		return c.Redirect("/services")
	}
	w.Back()
	h.save(sid, w)
	return c.Redirect("/book")
}

// Confirm submits the booking. The store guarantees a booking record
// even when the backend write fails, so the wizard always reaches
// Success from here.
func (h *WizardHandler) Confirm(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	w := h.load(sid)
	if w == nil {
		return c.Redirect("/services")
	}
	if w.Step != booking.StepConfirm {
		return c.Redirect("/book")
	}
	u := h.Sessions.Current(sid)
	token, owner := "", sid
	if u != nil {
		token, owner = u.Token, u.ID
	}
	b := h.Data.CreateBooking(c.Context(), token, owner, w.Payload(u))
	w.Finish(b.ID)
	h.save(sid, w)
	applog.Audit(c, "booking.create", map[string]any{
		"booking_id": b.ID,
		"service":    b.ServiceType,
		"sync":       string(b.Sync),
	})
	return c.Redirect("/book")
}

// Dismiss abandons or closes the wizard.
func (h *WizardHandler) Dismiss(c *fiber.Ctx) error {
	sid := EnsureSID(c, h.Secret)
	_ = h.KV.Delete(sid + wizardKey)
	if h.Sessions.Current(sid) != nil {
		return c.Redirect("/my-bookings")
	}
	return c.Redirect("/services")
}
