// Package events publishes domain events to RabbitMQ on a best-effort
// basis. Every error is logged and swallowed; the booking flow never
// depends on the broker being up.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"autocare/internal/domain"
	applog "autocare/internal/log"
)

const bookingCreatedQueue = "booking.created"

// BookingCreatedEvent carries enough for downstream consumers (workshop
// displays, analytics) without querying the backend.
type BookingCreatedEvent struct {
	BookingID    string  `json:"booking_id"`
	CustomerName string  `json:"customer_name"`
	ServiceType  string  `json:"service_type"`
	ServicePrice float64 `json:"service_price"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Method       string  `json:"payment_method"`
	LocalOnly    bool    `json:"local_only"`
	CreatedAt    string  `json:"created_at"`
}

type Publisher struct {
	url string
}

// NewPublisher returns a disabled publisher when url is empty.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// BookingCreated publishes to the durable booking.created queue. The
// connection is per-publish; bookings are rare enough that holding a
// channel open buys nothing.
func (p *Publisher) BookingCreated(ctx context.Context, b domain.Booking) {
	if !p.Enabled() {
		return
	}
	ev := BookingCreatedEvent{
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
		ServiceType:  b.ServiceType,
		ServicePrice: b.ServicePrice,
		Date:         b.Date,
		Time:         b.Time,
		Method:       b.Method,
		LocalOnly:    b.Sync == domain.SyncLocal,
		CreatedAt:    b.CreatedAt,
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		applog.Degrade("events.booking_created.dial", err, nil)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		applog.Degrade("events.booking_created.channel", err, nil)
		return
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(bookingCreatedQueue, true, false, false, false, nil); err != nil {
		applog.Degrade("events.booking_created.declare", err, nil)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		applog.Degrade("events.booking_created.encode", err, nil)
		return
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", bookingCreatedQueue, false, false, pub); err != nil {
		applog.Degrade("events.booking_created.publish", err, map[string]any{"booking_id": ev.BookingID})
	}
}
