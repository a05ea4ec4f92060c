package helper

import "backend-clinic/internal/models"

// Public board statuses.
const (
	StatusOffline = "Offline"
	StatusPaused  = "Paused"
	StatusLive    = "Live"
)

// LiveStatusInput is everything the projector needs for one doctor.
// LastTokenCalled must already be day-scoped (0 when last called on a
// previous service day). LastTokenStatus is the queue status of the item
// matching LastTokenCalled, empty when there is no such item today.
type LiveStatusInput struct {
	AvailableToday  bool
	IsPaused        bool
	LastTokenCalled int
	LastTokenStatus string
	NextToken       int // 0 when nobody is waiting
}

type LiveStatus struct {
	Status             string `json:"status"`
	NowServing         int    `json:"now_serving"`
	NextToken          int    `json:"next_token"`
	ReadyForNext       bool   `json:"ready_for_next"`
	WaitingForPatients bool   `json:"waiting_for_patients"`
}

// BuildLiveStatus computes the public display tuple for one doctor. It is
// pure and never fails; missing session data degrades to the zero input,
// which renders as "Waiting for Patients".
func BuildLiveStatus(in LiveStatusInput) LiveStatus {
	if !in.AvailableToday {
		return LiveStatus{Status: StatusOffline}
	}
	if in.IsPaused {
		return LiveStatus{Status: StatusPaused}
	}

	out := LiveStatus{Status: StatusLive, NextToken: in.NextToken}

	// Between patients: nobody called yet today, or the last called item is
	// no longer in consultation. Show the computed candidate instead of the
	// stale last-called value.
	if in.LastTokenCalled == 0 || in.LastTokenStatus != models.QueueInConsultation {
		if in.NextToken > 0 {
			out.ReadyForNext = true
		} else {
			out.WaitingForPatients = true
		}
		return out
	}

	out.NowServing = in.LastTokenCalled
	return out
}

// EffectiveLastToken day-scopes a stored last-called token: a value written
// on a previous service day reads as 0.
func EffectiveLastToken(lastToken int, lastCalledDate, today string) int {
	if lastCalledDate != today {
		return 0
	}
	return lastToken
}
