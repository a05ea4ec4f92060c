package helper

import (
	"testing"

	"backend-clinic/internal/models"

	"github.com/stretchr/testify/assert"
)

func waiting(token int, priority string) models.Appointment {
	return models.Appointment{
		TokenNumber: token,
		Priority:    priority,
		QueueStatus: models.QueueWaiting,
	}
}

func tokens(items []models.Appointment) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.TokenNumber)
	}
	return out
}

func TestOrderWaitingCriticalBeforeNormal(t *testing.T) {
	items := []models.Appointment{
		waiting(1, models.PriorityNormal),
		waiting(2, models.PriorityCritical),
		waiting(3, models.PriorityNormal),
		waiting(4, models.PriorityCritical),
	}

	ordered, next := OrderWaiting(items)

	assert.Equal(t, []int{2, 4, 1, 3}, tokens(ordered))
	assert.NotNil(t, next)
	assert.Equal(t, 2, next.TokenNumber)
}

func TestOrderWaitingFIFOWithinPriority(t *testing.T) {
	items := []models.Appointment{
		waiting(9, models.PriorityNormal),
		waiting(3, models.PriorityNormal),
		waiting(7, models.PriorityNormal),
	}

	ordered, next := OrderWaiting(items)

	assert.Equal(t, []int{3, 7, 9}, tokens(ordered))
	assert.Equal(t, 3, next.TokenNumber)
}

func TestOrderWaitingIgnoresNonWaiting(t *testing.T) {
	items := []models.Appointment{
		{TokenNumber: 1, Priority: models.PriorityCritical, QueueStatus: models.QueueCompleted},
		{TokenNumber: 2, Priority: models.PriorityNormal, QueueStatus: models.QueueInConsultation},
		{TokenNumber: 3, Priority: models.PriorityNormal, QueueStatus: models.QueueSkipped},
		waiting(4, models.PriorityNormal),
	}

	ordered, next := OrderWaiting(items)

	assert.Equal(t, []int{4}, tokens(ordered))
	assert.Equal(t, 4, next.TokenNumber)
}

func TestOrderWaitingEmpty(t *testing.T) {
	ordered, next := OrderWaiting(nil)

	assert.Empty(t, ordered)
	assert.Nil(t, next)

	ordered, next = OrderWaiting([]models.Appointment{
		{TokenNumber: 1, QueueStatus: models.QueueCompleted},
	})

	assert.Empty(t, ordered)
	assert.Nil(t, next)
}

func TestOrderWaitingPriorityToggleReorders(t *testing.T) {
	items := []models.Appointment{
		waiting(1, models.PriorityNormal),
		waiting(2, models.PriorityNormal),
	}

	_, next := OrderWaiting(items)
	assert.Equal(t, 1, next.TokenNumber)

	// Marking token 2 Critical pre-empts token 1 on the next read.
	items[1].Priority = models.PriorityCritical
	ordered, next := OrderWaiting(items)

	assert.Equal(t, []int{2, 1}, tokens(ordered))
	assert.Equal(t, 2, next.TokenNumber)
}

func TestOrderWaitingCriticalQueuesBehindEarlierCritical(t *testing.T) {
	items := []models.Appointment{
		waiting(1, models.PriorityCritical),
		waiting(5, models.PriorityCritical),
		waiting(2, models.PriorityNormal),
	}

	ordered, _ := OrderWaiting(items)

	// A new Critical never jumps an already-Critical lower token.
	assert.Equal(t, []int{1, 5, 2}, tokens(ordered))
}

func TestOrderWaitingDoesNotMutateInput(t *testing.T) {
	items := []models.Appointment{
		waiting(2, models.PriorityNormal),
		waiting(1, models.PriorityCritical),
	}

	OrderWaiting(items)

	assert.Equal(t, 2, items[0].TokenNumber)
	assert.Equal(t, 1, items[1].TokenNumber)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityRank(models.PriorityCritical), PriorityRank(models.PriorityNormal))
	assert.Equal(t, PriorityRank(models.PriorityNormal), PriorityRank("anything else"))
}
