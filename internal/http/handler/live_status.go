package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const liveStatusCacheKey = "live:doctors"
const liveStatusCacheTTL = 2 * time.Second

// DoctorLiveData - One card on the public live token board.
type DoctorLiveData struct {
	DoctorID       int64  `json:"doctor_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	helper.LiveStatus
	WaitingCount   int    `json:"waiting_count"`
	TotalToday     int    `json:"total_today"`
	CurrentSession string `json:"current_session,omitempty"`
}

// GetDoctorsLive - Public aggregate view for the live token board. Purely
// derived from stored state; a doctor with no session or queue data shows
// a default card instead of an error. Cached briefly for the 3s poll.
func GetDoctorsLive(c *fiber.Ctx) error {
	if cached, err := config.Redis.Get(config.Ctx, liveStatusCacheKey).Bytes(); err == nil && len(cached) > 0 {
		c.Set("Content-Type", "application/json")
		return c.Send(cached)
	}

	now := time.Now()
	today := now.Format("2006-01-02")
	weekday := now.Weekday().String()

	// One row per doctor with everything the projector needs, correlated
	// subqueries scoped to today's confirmed items.
	query := `
		SELECT
			d.id,
			d.user_id,
			u.name,
			d.specialization,
			d.is_paused,
			d.last_token_called,
			DATE_FORMAT(d.last_called_date, '%Y-%m-%d'),
			d.current_session,
			(
				SELECT COUNT(*) FROM doctor_availabilities da
				WHERE da.doctor_id = d.id AND da.weekday = ?
			) AS available_today,
			(
				SELECT COUNT(*) FROM appointments a
				WHERE a.doctor_id = d.user_id
				AND a.service_date = ?
				AND a.booking_status IN (?, ?)
			) AS total_today,
			(
				SELECT COUNT(*) FROM appointments a
				WHERE a.doctor_id = d.user_id
				AND a.service_date = ?
				AND a.booking_status = ?
				AND a.queue_status = ?
			) AS waiting_count,
			(
				SELECT a.token_number FROM appointments a
				WHERE a.doctor_id = d.user_id
				AND a.service_date = ?
				AND a.booking_status = ?
				AND a.queue_status = ?
				ORDER BY FIELD(a.priority, ?, ?), a.token_number ASC
				LIMIT 1
			) AS next_token,
			(
				SELECT a.queue_status FROM appointments a
				WHERE a.doctor_id = d.user_id
				AND a.service_date = ?
				AND a.token_number = d.last_token_called
				LIMIT 1
			) AS last_token_status
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		ORDER BY u.name ASC
	`

	rows, err := config.DB.Query(query,
		weekday,
		today, models.BookingConfirmed, models.BookingCompleted,
		today, models.BookingConfirmed, models.QueueWaiting,
		today, models.BookingConfirmed, models.QueueWaiting,
		models.PriorityCritical, models.PriorityNormal,
		today,
	)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch live status",
		})
	}
	defer rows.Close()

	displays := []DoctorLiveData{}

	for rows.Next() {
		var (
			display         DoctorLiveData
			doctorRowID     int64
			isPaused        int
			lastToken       int
			lastCalledDate  sql.NullString
			currentSession  sql.NullString
			availableToday  int
			nextToken       sql.NullInt64
			lastTokenStatus sql.NullString
		)

		err := rows.Scan(
			&doctorRowID,
			&display.DoctorID,
			&display.Name,
			&display.Specialization,
			&isPaused,
			&lastToken,
			&lastCalledDate,
			&currentSession,
			&availableToday,
			&display.TotalToday,
			&display.WaitingCount,
			&nextToken,
			&lastTokenStatus,
		)
		if err != nil {
			log.Printf("[live] scan error: %v", err)
			continue
		}

		in := helper.LiveStatusInput{
			AvailableToday:  availableToday > 0,
			IsPaused:        isPaused == 1,
			LastTokenCalled: helper.EffectiveLastToken(lastToken, lastCalledDate.String, today),
		}
		if nextToken.Valid {
			in.NextToken = int(nextToken.Int64)
		}
		if lastTokenStatus.Valid {
			in.LastTokenStatus = lastTokenStatus.String
		}

		display.LiveStatus = helper.BuildLiveStatus(in)
		if currentSession.Valid {
			display.CurrentSession = currentSession.String
		}

		displays = append(displays, display)
	}

	payload := fiber.Map{
		"success":   true,
		"data":      displays,
		"timestamp": now.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to build live status",
		})
	}

	config.Redis.Set(config.Ctx, liveStatusCacheKey, body, liveStatusCacheTTL)

	c.Set("Content-Type", "application/json")
	return c.Send(body)
}
