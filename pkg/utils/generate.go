package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// GenerateBookingRef builds a human readable reference for confirmation mails.
// Format: SEAT-YYYYMMDD-<first 8 chars of booking id>
func GenerateBookingRef(bookingID uuid.UUID, bookedAt time.Time) string {
	return fmt.Sprintf("SEAT-%s-%s", bookedAt.Format("20060102"), bookingID.String()[:8])
}
