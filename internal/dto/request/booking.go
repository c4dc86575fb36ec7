package request

// BookSeatRequest is the form body of POST /trips/{id}/book. Seat is checked
// by the booking service so a missing or malformed code maps to one error.
type BookSeatRequest struct {
	Seat string `json:"seat" form:"seat"`
}
