package response

// LatestLocationResponse keeps null coordinates when nothing was recorded yet.
type LatestLocationResponse struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
