package helper

import (
	"strings"
	"time"

	"backend-clinic/internal/models"
)

// IsAvailableToday reports whether the doctor has any availability entry
// configured for the current weekday. A doctor without one shows as Offline
// on the public board.
func IsAvailableToday(availability []models.Availability, now time.Time) bool {
	day := now.Weekday().String()
	for _, a := range availability {
		if strings.EqualFold(a.Weekday, day) {
			return true
		}
	}
	return false
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidWeekday checks a weekday name in availability input.
func ValidWeekday(day string) bool {
	for _, d := range weekdays {
		if strings.EqualFold(day, d) {
			return true
		}
	}
	return false
}
