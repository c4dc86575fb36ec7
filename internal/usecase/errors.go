package usecase

import "errors"

// Seat ledger outcomes. Each maps to its own user-facing message.
var (
	ErrTripNotFound         = errors.New("trip not found")
	ErrInvalidSeat          = errors.New("invalid seat")
	ErrTripInactive         = errors.New("trip is not open for booking")
	ErrDuplicateUserBooking = errors.New("you already booked a seat for this trip")
	ErrSeatTaken            = errors.New("seat already booked")
	ErrStorageUnavailable   = errors.New("booking storage unavailable")
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidLocation    = errors.New("invalid GPS data")
	ErrTripInPast         = errors.New("trip date is in the past")
	ErrWrongPassword      = errors.New("current password is incorrect")
)
