// Package notify delivers booking confirmations outside the request path.
// The booking service hands events to a Dispatcher, whose workers pass them
// to a Sink: the log, SMTP, or a RabbitMQ queue drained by a Consumer.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueueBookingConfirmed is the default queue name used by Publisher and Consumer.
const QueueBookingConfirmed = "booking.confirmed"

type BookingConfirmed struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Ref        string    `json:"ref"`
	UserID     uuid.UUID `json:"user_id"`
	TripID     uuid.UUID `json:"trip_id"`
	TripName   string    `json:"trip_name"`
	TripDate   string    `json:"trip_date"` // YYYY-MM-DD
	Route      string    `json:"route,omitempty"`
	SeatNumber string    `json:"seat_number"`
	BookedAt   time.Time `json:"booked_at"`
}

// Sink receives one confirmation. Errors are reported to the caller for
// logging only; a committed booking is never undone because of them.
type Sink interface {
	Notify(ctx context.Context, event BookingConfirmed) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, event BookingConfirmed) error

func (f SinkFunc) Notify(ctx context.Context, event BookingConfirmed) error {
	return f(ctx, event)
}
