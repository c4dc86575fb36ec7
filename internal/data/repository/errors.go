package repository

import "errors"

// Sentinel errors returned by repositories. Lookups that find nothing return
// (nil, nil); these cover write conflicts only.
var (
	// ErrSeatConflict: the (trip, seat) unique index rejected the insert.
	ErrSeatConflict = errors.New("seat already booked")

	// ErrUserConflict: the (trip, user) unique index rejected the insert.
	ErrUserConflict = errors.New("user already holds a booking for this trip")

	// ErrNotFound: an update or delete matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate covers any other unique index (username, email, ...).
	ErrDuplicate = errors.New("duplicate record")
)

const (
	constraintTripSeat = "uq_seat_bookings_trip_seat"
	constraintTripUser = "uq_seat_bookings_trip_user"
)
