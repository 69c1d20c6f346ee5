package domain

// Booking lifecycle states as the backend reports them.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusCompleted = "Completed"
	StatusRejected  = "Rejected"
)

// Payment states and methods.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"

	MethodCash = "cash"
	MethodCard = "card"
)

// SyncState records whether a record reflects the backend or only this
// process. Locally applied mutations keep the UI responsive when a
// backend write fails; the badge makes the difference visible.
type SyncState string

const (
	SyncSynced SyncState = "synced"
	SyncLocal  SyncState = "local"
)

type Service struct {
	ID          string    `json:"serviceId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Discount    float64   `json:"discount,omitempty"`
	Featured    bool      `json:"featured,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Active      bool      `json:"active"`
	Icon        string    `json:"icon"`
	Sync        SyncState `json:"-"`
}

// EffectivePrice applies the discount percentage, floored at zero.
func (s Service) EffectivePrice() float64 {
	p := s.Price * (100 - s.Discount) / 100
	if p < 0 {
		return 0
	}
	return p
}

type Booking struct {
	ID           string    `json:"bookingId"`
	CustomerName string    `json:"customerName"`
	Phone        string    `json:"phone"`
	VehicleNo    string    `json:"vehicleNumber"`
	VehicleModel string    `json:"vehicleModel"`
	ServiceType  string    `json:"serviceType"`
	ServicePrice float64   `json:"servicePrice"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	PaymentState string    `json:"paymentStatus"`
	Method       string    `json:"paymentMethod"`
	CardLast4    string    `json:"cardLast4,omitempty"`
	Progress     int       `json:"progress,omitempty"` // meaningful only while Approved
	Stage        string    `json:"stage,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	Sync         SyncState `json:"-"`

	// Owner scopes a booking to the visitor who created it: the user id
	// for signed-in customers, the sid for guests. Never sent to the
	// backend; it exists so locally held records stay private to their
	// creator.
	Owner string `json:"-"`
}

// AwaitingReview reports the composite Pending+paid state.
func (b Booking) AwaitingReview() bool {
	return b.Status == StatusPending && b.PaymentState == PaymentPaid
}

// Payable reports whether the payment invariant allows marking this
// booking paid: only while Pending or after Completed.
func (b Booking) Payable() bool {
	if b.PaymentState == PaymentPaid {
		return false
	}
	return b.Status == StatusPending || b.Status == StatusCompleted
}

type Review struct {
	ID          string    `json:"reviewId"`
	Author      string    `json:"author"`
	ServiceType string    `json:"serviceType"`
	BookingID   string    `json:"bookingId,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	Approved    bool      `json:"approved"`
	CreatedAt   string    `json:"createdAt"`
	Sync        SyncState `json:"-"`
}

// Notification types; "payment" drives the pay-now affordance.
const (
	NotifPayment = "payment"
	NotifGeneric = "generic"
)

type Notification struct {
	ID        string `json:"notificationId"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}
