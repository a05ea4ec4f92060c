package helper

import (
	"sort"

	"backend-clinic/internal/models"
)

// PriorityRank maps a priority to its sort rank. Critical sorts before
// Normal regardless of token number.
func PriorityRank(priority string) int {
	if priority == models.PriorityCritical {
		return 0
	}
	return 1
}

// OrderWaiting filters the day's items down to Waiting ones and sorts them
// by (priority rank, token number) ascending. The second return value is the
// next candidate to call, nil when nobody is waiting. Token numbers are
// unique per doctor per day, so no further tie-break is needed.
func OrderWaiting(items []models.Appointment) ([]models.Appointment, *models.Appointment) {
	waiting := make([]models.Appointment, 0, len(items))
	for _, item := range items {
		if item.QueueStatus == models.QueueWaiting {
			waiting = append(waiting, item)
		}
	}

	sort.SliceStable(waiting, func(i, j int) bool {
		ri, rj := PriorityRank(waiting[i].Priority), PriorityRank(waiting[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return waiting[i].TokenNumber < waiting[j].TokenNumber
	})

	if len(waiting) == 0 {
		return waiting, nil
	}

	next := waiting[0]
	return waiting, &next
}
