package helper

import (
	"log"
	"time"

	"backend-clinic/internal/config"
	"backend-clinic/internal/models"
)

// StaleAfter is how long an In-Consultation item may sit without being
// completed or skipped before it is treated as not present.
const StaleAfter = 15 * time.Minute

// IsStaleConsultation reports whether an item has been In-Consultation
// longer than the threshold.
func IsStaleConsultation(queueStatus string, startedAt *time.Time, now time.Time) bool {
	if queueStatus != models.QueueInConsultation || startedAt == nil {
		return false
	}
	return now.Sub(*startedAt) > StaleAfter
}

// ReapStaleConsultations demotes stale In-Consultation items for one
// doctor's day to Skipped and logs a stale_skip event per item. The update
// is conditional on the current status, so repeated runs are no-ops once a
// row has been demoted.
func ReapStaleConsultations(doctorID int64, serviceDate string) error {
	rows, err := config.DB.Query(`
		SELECT id, token_number
		FROM appointments
		WHERE doctor_id = ?
		AND service_date = ?
		AND queue_status = ?
		AND consultation_start_time IS NOT NULL
		AND consultation_start_time < DATE_SUB(NOW(), INTERVAL 15 MINUTE)
	`, doctorID, serviceDate, models.QueueInConsultation)

	if err != nil {
		return err
	}
	defer rows.Close()

	type stale struct {
		id    int64
		token int
	}
	var found []stale
	for rows.Next() {
		var s stale
		if err := rows.Scan(&s.id, &s.token); err != nil {
			continue
		}
		found = append(found, s)
	}

	demoted := false
	for _, s := range found {
		res, err := config.DB.Exec(`
			UPDATE appointments
			SET queue_status = ?, updated_at = NOW()
			WHERE id = ? AND queue_status = ?
		`, models.QueueSkipped, s.id, models.QueueInConsultation)

		if err != nil {
			log.Printf("[queue] stale demotion failed for appointment %d: %v", s.id, err)
			continue
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			continue
		}

		demoted = true
		InsertQueueEvent(&s.id, doctorID, models.EventStaleSkip, nil)
		log.Printf("[queue] token %d (appointment %d) marked not present after %v", s.token, s.id, StaleAfter)
	}

	// A demoted item is no longer being served; the public mirror must not
	// keep announcing it.
	if demoted {
		config.Redis.Del(config.Ctx, NowServingKey(doctorID, serviceDate))
	}

	return nil
}
