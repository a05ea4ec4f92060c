package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// TakeToken - Book a queue token with a doctor for a service date. This is
// the write half of the queue item contract: token numbers are assigned
// monotonically per (doctor, date) and never reused or reassigned.
func TakeToken(c *fiber.Ctx) error {
	var req models.TakeTokenRequest
	patientID := c.Locals("user_id").(int64)

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.DoctorID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "doctor_id is required",
		})
	}

	serviceDate := req.ServiceDate
	if serviceDate == "" {
		serviceDate = helper.Today()
	} else if _, err := time.Parse("2006-01-02", serviceDate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "service_date must be YYYY-MM-DD",
		})
	}

	// The doctor must have a profile before patients can queue up.
	var doctorName string
	err := config.DB.QueryRow(`
		SELECT u.name
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		WHERE d.user_id = ?
	`, req.DoctorID).Scan(&doctorName)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate doctor",
		})
	}

	token := nextTokenNumber(req.DoctorID, serviceDate)

	result, err := config.DB.Exec(`
		INSERT INTO appointments
		(doctor_id, patient_id, service_date, token_number, priority,
		 queue_status, booking_status, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, req.DoctorID, patientID, serviceDate, token, models.PriorityNormal,
		models.QueueWaiting, models.BookingConfirmed, req.Reason)

	if err != nil {
		log.Printf("[queue] failed to insert appointment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to book token",
		})
	}

	appointmentID, _ := result.LastInsertId()
	helper.InsertQueueEvent(&appointmentID, req.DoctorID, models.EventTake, &patientID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %d booked with %s", token, doctorName),
		"data": fiber.Map{
			"appointment_id": appointmentID,
			"doctor_id":      req.DoctorID,
			"doctor_name":    doctorName,
			"service_date":   serviceDate,
			"token_number":   token,
			"queue_status":   models.QueueWaiting,
		},
	})
}

// nextTokenNumber assigns the next token for (doctor, date). The Redis
// counter is the fast path; the table MAX is the source of truth when the
// counter is cold or lagging, and the counter is healed to match it.
func nextTokenNumber(doctorID int64, serviceDate string) int {
	key := fmt.Sprintf("queue:doctor:%d:date:%s:counter", doctorID, serviceDate)

	var dbNext int
	err := config.DB.QueryRow(`
		SELECT COALESCE(MAX(token_number), 0) + 1
		FROM appointments
		WHERE doctor_id = ? AND service_date = ?
	`, doctorID, serviceDate).Scan(&dbNext)
	if err != nil {
		dbNext = 1
	}

	counter, err := config.Redis.Incr(config.Ctx, key).Result()
	if err != nil {
		log.Printf("[queue] token counter unavailable, using table max: %v", err)
		return dbNext
	}
	config.Redis.Expire(config.Ctx, key, 48*time.Hour)

	if int(counter) < dbNext {
		config.Redis.Set(config.Ctx, key, dbNext, 48*time.Hour)
		return dbNext
	}

	return int(counter)
}
