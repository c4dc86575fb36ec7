package response

import (
	"time"

	"bus-tracker/internal/data/entity"
)

type SeatBookingResponse struct {
	ID            string               `json:"id"`
	TripID        string               `json:"trip_id"`
	SeatNumber    string               `json:"seat_number"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	BookedAt      time.Time            `json:"booked_at"`
}

// BookingPageResponse is everything the seat picker needs in one call.
type BookingPageResponse struct {
	Trip            TripResponse         `json:"trip"`
	ExistingBooking *SeatBookingResponse `json:"existing_booking"`
	Booked          []string             `json:"booked"`
}

type BookedSeatsResponse struct {
	Booked []string `json:"booked"`
}

func SeatBookingToResponse(booking *entity.SeatBooking) *SeatBookingResponse {
	if booking == nil {
		return nil
	}
	return &SeatBookingResponse{
		ID:            booking.ID.String(),
		TripID:        booking.TripID.String(),
		SeatNumber:    booking.SeatNumber,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		BookedAt:      booking.BookedAt,
	}
}
