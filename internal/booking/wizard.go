// Package booking implements the four-step booking wizard: Schedule,
// Details, Confirm, Success. Steps advance strictly in order, each step
// validates only its own fields, and all failing fields of a step are
// reported at once.
package booking

import (
	"strings"
	"time"

	"autocare/internal/domain"
	"autocare/internal/validate"
)

type Step int

const (
	StepSchedule Step = iota + 1
	StepDetails
	StepConfirm
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepSchedule:
		return "Schedule"
	case StepDetails:
		return "Details"
	case StepConfirm:
		return "Confirm"
	case StepSuccess:
		return "Success"
	}
	return "Unknown"
}

// TimeSlots is the fixed pick list for the Schedule step.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// QuickDates returns the rolling 7-day quick-pick starting today.
func QuickDates() []string {
	out := make([]string, 0, 7)
	t := time.Now()
	for i := 0; i < 7; i++ {
		out = append(out, t.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return out
}

// Wizard is the per-visitor wizard state, persisted between requests.
// Validation errors are transient and not persisted.
type Wizard struct {
	Step Step `json:"step"`

	ServiceID    string  `json:"serviceId"`
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	Date string `json:"date"`
	Time string `json:"time"`

	VehicleNo    string `json:"vehicleNumber"`
	VehicleModel string `json:"vehicleModel"`
	Method       string `json:"method"`
	CardNumber   string `json:"cardNumber"`
	CardExpiry   string `json:"cardExpiry"`
	CardCVV      string `json:"cardCvv"`
	CardHolder   string `json:"cardHolder"`

	// Guest contact, required only when no customer session exists.
	GuestName  string `json:"guestName"`
	GuestPhone string `json:"guestPhone"`

	BookingID string `json:"bookingId"`

	Errors map[string]string `json:"-"`
}

// Start opens the wizard at Schedule for one service, snapshotting the
// effective price.
func Start(svc domain.Service) *Wizard {
	return &Wizard{
		Step:         StepSchedule,
		ServiceID:    svc.ID,
		ServiceName:  svc.Name,
		ServicePrice: svc.EffectivePrice(),
	}
}

// SubmitSchedule validates date and time and advances to Details.
func (w *Wizard) SubmitSchedule(date, timeSlot string) bool {
	if w.Step != StepSchedule {
		return false
	}
	w.Errors = map[string]string{}
	w.Date = strings.TrimSpace(date)
	w.Time = strings.TrimSpace(timeSlot)
	if w.Date == "" {
		w.Errors["date"] = "Please pick a date"
	}
	if w.Time == "" {
		w.Errors["time"] = "Please pick a time slot"
	}
	if len(w.Errors) > 0 {
		return false
	}
	w.Step = StepDetails
	return true
}

// DetailsForm carries the raw Details inputs.
type DetailsForm struct {
	VehicleNo    string
	VehicleModel string
	Method       string
	CardNumber   string
	CardExpiry   string
	CardCVV      string
	CardHolder   string
	GuestName    string
	GuestPhone   string
}

// SubmitDetails validates every Details field at once and advances to
// Confirm. authed indicates an existing customer session; guests must
// also supply contact details.
func (w *Wizard) SubmitDetails(f DetailsForm, authed bool) bool {
	if w.Step != StepDetails {
		return false
	}
	w.Errors = map[string]string{}

	w.VehicleNo = strings.TrimSpace(f.VehicleNo)
	w.VehicleModel = strings.TrimSpace(f.VehicleModel)
	w.Method = strings.TrimSpace(f.Method)

	if w.VehicleNo == "" {
		w.Errors["vehicleNumber"] = "Vehicle number is required"
	}
	if w.VehicleModel == "" {
		w.Errors["vehicleModel"] = "Vehicle model is required"
	}
	switch w.Method {
	case domain.MethodCash:
	case domain.MethodCard:
		digits, ok := validate.CardNumber(f.CardNumber)
		if !ok {
			w.Errors["cardNumber"] = "Card number must be 16 digits"
		}
		w.CardNumber = digits
		if !validate.Expiry(f.CardExpiry) {
			w.Errors["cardExpiry"] = "Expiry must be MM/YY"
		}
		w.CardExpiry = strings.TrimSpace(f.CardExpiry)
		if !validate.CVV(f.CardCVV) {
			w.Errors["cardCvv"] = "CVV must be 3 or 4 digits"
		}
		w.CardCVV = strings.TrimSpace(f.CardCVV)
		if strings.TrimSpace(f.CardHolder) == "" {
			w.Errors["cardHolder"] = "Cardholder name is required"
		}
		w.CardHolder = strings.TrimSpace(f.CardHolder)
	default:
		w.Errors["method"] = "Please choose a payment method"
	}

	if !authed {
		if _, ok := validate.Name(f.GuestName); !ok {
			w.Errors["name"] = "Your name is required"
		}
		w.GuestName = strings.TrimSpace(f.GuestName)
		digits, ok := validate.Phone(f.GuestPhone)
		if !ok {
			w.Errors["phone"] = "Phone must be 10 digits"
		}
		w.GuestPhone = digits
	}

	if len(w.Errors) > 0 {
		return false
	}
	w.Step = StepConfirm
	return true
}

// Back steps Details→Schedule or Confirm→Details. Success is terminal.
func (w *Wizard) Back() {
	switch w.Step {
	case StepDetails:
		w.Step = StepSchedule
	case StepConfirm:
		w.Step = StepDetails
	}
}

// Payload assembles the submission at Confirm time. Contact comes from
// the session when present, else from the guest fields. Payment status
// is always pending: card capture records intent, it does not charge.
func (w *Wizard) Payload(u *domain.User) domain.Booking {
	name, phone := w.GuestName, w.GuestPhone
	if u != nil {
		name, phone = u.Name, u.Phone
	}
	b := domain.Booking{
		CustomerName: name,
		Phone:        phone,
		VehicleNo:    w.VehicleNo,
		VehicleModel: w.VehicleModel,
		ServiceType:  w.ServiceName,
		ServicePrice: w.ServicePrice,
		Date:         w.Date,
		Time:         w.Time,
		Method:       w.Method,
		PaymentState: domain.PaymentPending,
	}
	if w.Method == domain.MethodCard && len(w.CardNumber) >= 4 {
		b.CardLast4 = w.CardNumber[len(w.CardNumber)-4:]
	}
	return b
}

// Finish records the created booking id and enters the terminal step.
func (w *Wizard) Finish(bookingID string) {
	if w.Step != StepConfirm {
		return
	}
	w.BookingID = bookingID
	w.Step = StepSuccess
}

// FormatCard groups digits in fours for display only.
func FormatCard(digits string) string {
	var parts []string
	for len(digits) > 4 {
		parts = append(parts, digits[:4])
		digits = digits[4:]
	}
	parts = append(parts, digits)
	return strings.Join(parts, " ")
}
