package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"log"

	"github.com/gofiber/fiber/v2"
)

// QueueStatsData - Today's counters for the doctor dashboard poll.
type QueueStatsData struct {
	Date           string `json:"date"`
	Total          int    `json:"total"`
	Waiting        int    `json:"waiting"`
	InConsultation int    `json:"in_consultation"`
	Completed      int    `json:"completed"`
	Skipped        int    `json:"skipped"`
	NextToken      int    `json:"next_token"`
}

// GetQueueStats - Per-status counts of today's confirmed queue for the
// calling doctor.
func GetQueueStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	today := helper.Today()

	stats := QueueStatsData{Date: today}

	rows, err := config.DB.Query(`
		SELECT queue_status, COUNT(*)
		FROM appointments
		WHERE doctor_id = ?
		AND service_date = ?
		AND booking_status IN (?, ?)
		GROUP BY queue_status
	`, userID, today, models.BookingConfirmed, models.BookingCompleted)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch queue stats",
		})
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("[queue] stats scan error: %v", err)
			continue
		}

		stats.Total += count
		switch status {
		case models.QueueWaiting:
			stats.Waiting = count
		case models.QueueInConsultation:
			stats.InConsultation = count
		case models.QueueCompleted:
			stats.Completed = count
		case models.QueueSkipped:
			stats.Skipped = count
		}
	}

	err = config.DB.QueryRow(`
		SELECT token_number
		FROM appointments
		WHERE doctor_id = ?
		AND service_date = ?
		AND booking_status = ?
		AND queue_status = ?
		ORDER BY FIELD(priority, ?, ?), token_number ASC
		LIMIT 1
	`, userID, today, models.BookingConfirmed, models.QueueWaiting,
		models.PriorityCritical, models.PriorityNormal).Scan(&stats.NextToken)
	if err != nil {
		stats.NextToken = 0
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
