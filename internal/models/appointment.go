package models

import "time"

// Queue status — position in today's service sequence.
// Distinct from booking status, which the booking/payment flow owns.
const (
	QueueWaiting        = "Waiting"
	QueueInConsultation = "In-Consultation"
	QueueCompleted      = "Completed"
	QueueSkipped        = "Skipped"
	QueueCancelled      = "Cancelled"
)

// Booking status — lifecycle of the appointment itself.
// Only Confirmed appointments are visible to the queue.
const (
	BookingPending   = "Pending"
	BookingConfirmed = "Confirmed"
	BookingCancelled = "Cancelled"
	BookingCompleted = "Completed"
	BookingRejected  = "Rejected"
	BookingNoShow    = "No-Show"
)

const (
	PriorityNormal   = "Normal"
	PriorityCritical = "Critical"
)

// Queue event types for the queue_events audit log.
const (
	EventTake      = "take"
	EventCall      = "call"
	EventComplete  = "complete"
	EventSkip      = "skip"
	EventStaleSkip = "stale_skip"
	EventPriority  = "priority"
	EventPause     = "pause"
	EventResume    = "resume"
)

type Appointment struct {
	ID                    int64      `json:"id"`
	DoctorID              int64      `json:"doctor_id"`
	PatientID             int64      `json:"patient_id"`
	ServiceDate           string     `json:"service_date"` // YYYY-MM-DD
	TokenNumber           int        `json:"token_number"`
	Priority              string     `json:"priority"`
	QueueStatus           string     `json:"queue_status"`
	BookingStatus         string     `json:"booking_status"`
	ConsultationStartTime *time.Time `json:"consultation_start_time"`
	Reason                string     `json:"reason,omitempty"`
	PatientName           string     `json:"patient_name,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the queue status allows no further transitions.
func IsTerminal(queueStatus string) bool {
	switch queueStatus {
	case QueueCompleted, QueueSkipped, QueueCancelled:
		return true
	}
	return false
}

type QueueEvent struct {
	ID            int64     `json:"id"`
	AppointmentID *int64    `json:"appointment_id"`
	DoctorID      int64     `json:"doctor_id"`
	Event         string    `json:"event"`
	ActorUserID   *int64    `json:"actor_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/

type TakeTokenRequest struct {
	DoctorID    int64  `json:"doctor_id"`
	ServiceDate string `json:"service_date"` // optional, defaults to today
	Reason      string `json:"reason"`
}

type UpdateQueueStatusRequest struct {
	AppointmentID int64  `json:"appointment_id"`
	Status        string `json:"status"` // In-Consultation, Completed, Skipped
}

type TogglePriorityRequest struct {
	AppointmentID int64 `json:"appointment_id"`
}

type QueueControlRequest struct {
	IsPaused bool    `json:"is_paused"`
	Session  *string `json:"session"`
}
