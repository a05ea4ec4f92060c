package helper

import (
	"testing"
	"time"

	"backend-clinic/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsAvailableToday(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	availability := []models.Availability{
		{Weekday: "Monday", StartTime: "09:00", EndTime: "17:00"},
		{Weekday: "Wednesday", StartTime: "09:00", EndTime: "13:00"},
	}

	assert.True(t, IsAvailableToday(availability, monday))
	assert.False(t, IsAvailableToday(availability, monday.AddDate(0, 0, 1)))
	assert.False(t, IsAvailableToday(nil, monday))
}

func TestIsAvailableTodayCaseInsensitive(t *testing.T) {
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	availability := []models.Availability{
		{Weekday: "monday", StartTime: "09:00", EndTime: "17:00"},
	}

	assert.True(t, IsAvailableToday(availability, monday))
}

func TestValidWeekday(t *testing.T) {
	assert.True(t, ValidWeekday("Monday"))
	assert.True(t, ValidWeekday("sunday"))
	assert.False(t, ValidWeekday("Funday"))
	assert.False(t, ValidWeekday(""))
}
