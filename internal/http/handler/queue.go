package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
)

// GetQueue - Today's queue for one doctor. Every read first demotes stale
// In-Consultation items, then returns the day's confirmed appointments in
// calling order plus the doctor's session state.
func GetQueue(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("doctorId")
	if err != nil || doctorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	today := helper.Today()

	if err := helper.ReapStaleConsultations(int64(doctorID), today); err != nil {
		log.Printf("[queue] stale sweep failed for doctor %d: %v", doctorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to refresh queue",
		})
	}

	query := `
		SELECT a.id, a.doctor_id, a.patient_id,
		       DATE_FORMAT(a.service_date, '%Y-%m-%d'),
		       a.token_number, a.priority, a.queue_status, a.booking_status,
		       a.consultation_start_time, a.created_at, a.updated_at,
		       u.name
		FROM appointments a
		JOIN users u ON a.patient_id = u.id
		WHERE a.doctor_id = ?
		AND a.service_date = ?
		AND a.booking_status = ?
		ORDER BY FIELD(a.priority, ?, ?), a.token_number ASC
	`

	rows, err := config.DB.Query(query, doctorID, today, models.BookingConfirmed,
		models.PriorityCritical, models.PriorityNormal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch queue",
		})
	}
	defer rows.Close()

	items := []models.Appointment{}
	for rows.Next() {
		var (
			a       models.Appointment
			started sql.NullTime
		)
		err := rows.Scan(
			&a.ID,
			&a.DoctorID,
			&a.PatientID,
			&a.ServiceDate,
			&a.TokenNumber,
			&a.Priority,
			&a.QueueStatus,
			&a.BookingStatus,
			&started,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.PatientName,
		)
		if err != nil {
			log.Printf("[queue] scan error: %v", err)
			continue
		}
		if started.Valid {
			t := started.Time
			a.ConsultationStartTime = &t
		}
		items = append(items, a)
	}

	_, next := helper.OrderWaiting(items)
	nextToken := 0
	if next != nil {
		nextToken = next.TokenNumber
	}

	// Session state is optional: a doctor without a profile row still gets a
	// readable (empty) queue.
	var state models.QueueState
	doctor, err := helper.DoctorForUser(int64(doctorID))
	if err == nil {
		state = doctor.QueueState
	} else if err != helper.ErrDoctorNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch session state",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"queue":       items,
			"queue_state": state,
			"next_token":  nextToken,
		},
	})
}
