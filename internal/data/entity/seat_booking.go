package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusPending   BookingStatus = "pending"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type SeatBooking struct {
	ID            uuid.UUID     `db:"id"`
	TripID        uuid.UUID     `db:"trip_id"`
	SeatNumber    string        `db:"seat_number"` // 1A, 12B, ...
	UserID        uuid.UUID     `db:"user_id"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	BookedAt      time.Time     `db:"booked_at"`
}
