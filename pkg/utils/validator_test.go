package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSeatCode(t *testing.T) {
	valid := []string{"1A", "5C", "12B", "99Z"}
	for _, code := range valid {
		assert.True(t, IsSeatCode(code), code)
	}

	invalid := []string{"", "A", "AA", "0A", "100A", "1a", "12", "05B", " 1A"}
	for _, code := range invalid {
		assert.False(t, IsSeatCode(code), code)
	}
}

type tripForm struct {
	Name  string `validate:"required,tripname,max=128"`
	Depot string `validate:"omitempty,clock"`
	Seat  string `validate:"required,seatcode"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(tripForm{Name: "Bhorer Alo", Depot: "07:00", Seat: "1A"}))

	errs := ValidateStruct(tripForm{Name: "Bad;Name", Depot: "25:00", Seat: "AA"})
	assert.Len(t, errs, 3)
	assert.Equal(t, "Seat must look like 1A, 12B or 25C", errs["Seat"])
	assert.Equal(t, "Must be a time in HH:MM format", errs["Depot"])

	msg := FormatValidationErrors(errs)
	assert.Equal(t,
		"Depot: Must be a time in HH:MM format; "+
			"Name: Only letters, digits, spaces, hyphens and underscores are allowed; "+
			"Seat: Seat must look like 1A, 12B or 25C",
		msg)
}
