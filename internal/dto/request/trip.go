package request

type CreateTripRequest struct {
	Name          string  `json:"name" validate:"required,tripname,max=128"`
	Route         string  `json:"route" validate:"omitempty,max=255"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	DepartureTime string  `json:"departure_time" validate:"omitempty,clock"`
	TotalSeats    int     `json:"total_seats" validate:"omitempty,min=1,max=500"`
	SeatsPerRow   int     `json:"seats_per_row" validate:"omitempty,min=1,max=26"`
	Fare          float64 `json:"fare" validate:"gte=0"`
}

type SetTripActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}
