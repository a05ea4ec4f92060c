package models

import "time"

type Doctor struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Specialization string     `json:"specialization"`
	QueueState     QueueState `json:"queue_state"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// QueueState is the per-doctor session document. LastTokenCalled is only
// meaningful for LastCalledDate; readers must treat it as 0 on any other day.
type QueueState struct {
	IsPaused        bool   `json:"is_paused"`
	LastTokenCalled int    `json:"last_token_called"`
	LastCalledDate  string `json:"last_called_date,omitempty"` // YYYY-MM-DD
	CurrentSession  string `json:"current_session,omitempty"`
}

type Availability struct {
	Weekday   string `json:"weekday"` // e.g. "Monday"
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/

type UpsertDoctorProfileRequest struct {
	Specialization string         `json:"specialization" validate:"required,max=255"`
	Availability   []Availability `json:"availability"`
}
