package helper

import (
	"fmt"

	"backend-clinic/internal/models"
)

// NowServingKey is the Redis key mirroring the token a doctor is serving
// on a given day. Written at call time, cleared when the consultation ends.
func NowServingKey(doctorID int64, serviceDate string) string {
	return fmt.Sprintf("queue:doctor:%d:date:%s:now", doctorID, serviceDate)
}

// CallBlockReason decides whether a doctor may call the given item right
// now. It returns an empty string when the call may proceed, otherwise the
// conflict message for the client. Checks run in precedence order: session
// pause, the single-active-consultation rule, then the item itself.
func CallBlockReason(isPaused, activeConsultation bool, bookingStatus, queueStatus string) string {
	if isPaused {
		return "Queue is paused, resume before calling the next patient"
	}
	if activeConsultation {
		return "A patient is already in consultation"
	}
	if bookingStatus != models.BookingConfirmed {
		return fmt.Sprintf("Booking is not confirmed. Current status: %s", bookingStatus)
	}
	if queueStatus != models.QueueWaiting {
		return fmt.Sprintf("Appointment is not waiting. Current status: %s", queueStatus)
	}
	return ""
}
