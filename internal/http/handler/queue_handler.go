package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// queueItemRow is the subset of an appointment the controller needs before
// deciding a transition.
type queueItemRow struct {
	ID            int64
	DoctorID      int64
	TokenNumber   int
	QueueStatus   string
	BookingStatus string
	Priority      string
	ServiceDate   string
}

func loadQueueItem(appointmentID int64) (queueItemRow, error) {
	var item queueItemRow
	err := config.DB.QueryRow(`
		SELECT id, doctor_id, token_number, queue_status, booking_status, priority,
		       DATE_FORMAT(service_date, '%Y-%m-%d')
		FROM appointments
		WHERE id = ?
	`, appointmentID).Scan(
		&item.ID,
		&item.DoctorID,
		&item.TokenNumber,
		&item.QueueStatus,
		&item.BookingStatus,
		&item.Priority,
		&item.ServiceDate,
	)
	return item, err
}

// UpdateQueueStatus - Doctor moves one appointment through the queue state
// machine: In-Consultation (call), Completed, or Skipped.
func UpdateQueueStatus(c *fiber.Ctx) error {
	var req models.UpdateQueueStatusRequest
	userID := c.Locals("user_id").(int64)

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Status != models.QueueInConsultation &&
		req.Status != models.QueueCompleted &&
		req.Status != models.QueueSkipped {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Status must be '%s', '%s' or '%s'", models.QueueInConsultation, models.QueueCompleted, models.QueueSkipped),
		})
	}

	item, err := loadQueueItem(req.AppointmentID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Appointment not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch appointment",
		})
	}

	// Only the owning doctor may move its queue items.
	if item.DoctorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You do not own this appointment",
		})
	}

	// The queue only operates on confirmed bookings. A pending or cancelled
	// booking can still hold queue_status = 'Waiting'.
	if item.BookingStatus != models.BookingConfirmed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Booking is not confirmed. Current status: %s", item.BookingStatus),
		})
	}

	switch req.Status {
	case models.QueueInConsultation:
		return callAppointment(c, item, userID)
	case models.QueueCompleted:
		return completeAppointment(c, item, userID)
	default:
		return skipAppointment(c, item, userID)
	}
}

// CallNextQueue - Server-side call-next: the ordering engine picks the
// candidate (Critical first, then lowest token) and claims it.
func CallNextQueue(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	today := helper.Today()

	// Demote stale consultations first so an abandoned item does not block
	// the single-active-consultation check forever.
	if err := helper.ReapStaleConsultations(userID, today); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to refresh queue",
		})
	}

	doctor, err := helper.DoctorForUser(userID)
	if err == helper.ErrDoctorNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor profile not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch doctor profile",
		})
	}

	if doctor.QueueState.IsPaused {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Queue is paused, resume before calling the next patient",
		})
	}

	if busy, err := hasActiveConsultation(userID, today); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to check active consultation",
		})
	} else if busy {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "A patient is already in consultation",
		})
	}

	var item queueItemRow
	err = config.DB.QueryRow(`
		SELECT id, doctor_id, token_number, queue_status, booking_status, priority,
		       DATE_FORMAT(service_date, '%Y-%m-%d')
		FROM appointments
		WHERE doctor_id = ?
		AND service_date = ?
		AND booking_status = ?
		AND queue_status = ?
		ORDER BY FIELD(priority, ?, ?), token_number ASC
		LIMIT 1
	`, userID, today, models.BookingConfirmed, models.QueueWaiting,
		models.PriorityCritical, models.PriorityNormal).Scan(
		&item.ID,
		&item.DoctorID,
		&item.TokenNumber,
		&item.QueueStatus,
		&item.BookingStatus,
		&item.Priority,
		&item.ServiceDate,
	)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "No patients waiting",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to pick next patient",
		})
	}

	return claimAndCall(c, item, userID)
}

// callAppointment is call-next keyed on a specific appointment (the
// dashboard passes the head of the waiting list it last saw).
func callAppointment(c *fiber.Ctx, item queueItemRow, userID int64) error {
	// Same demotion sweep as call-next; without it a stale abandoned item
	// would hold the single-active-consultation check until the next read.
	if err := helper.ReapStaleConsultations(userID, item.ServiceDate); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to refresh queue",
		})
	}

	doctor, err := helper.DoctorForUser(userID)
	if err == helper.ErrDoctorNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor profile not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch doctor profile",
		})
	}

	busy, err := hasActiveConsultation(userID, item.ServiceDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to check active consultation",
		})
	}

	if reason := helper.CallBlockReason(doctor.QueueState.IsPaused, busy, item.BookingStatus, item.QueueStatus); reason != "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   reason,
		})
	}

	return claimAndCall(c, item, userID)
}

// claimAndCall performs the atomic claim: the item is taken only if it is
// still a Waiting item on a confirmed booking, so two concurrent calls
// cannot double-call a token and a booking cancelled in between is left
// alone.
func claimAndCall(c *fiber.Ctx, item queueItemRow, userID int64) error {
	res, err := config.DB.Exec(`
		UPDATE appointments
		SET queue_status = ?, consultation_start_time = NOW(), updated_at = NOW()
		WHERE id = ? AND queue_status = ? AND booking_status = ?
	`, models.QueueInConsultation, item.ID, models.QueueWaiting, models.BookingConfirmed)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to call patient",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Queue changed, reload and try again",
		})
	}

	_, err = config.DB.Exec(`
		UPDATE doctors
		SET last_token_called = ?, last_called_date = ?, updated_at = NOW()
		WHERE user_id = ?
	`, item.TokenNumber, item.ServiceDate, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update session state",
		})
	}

	// Mirror for the public "now serving" poll.
	config.Redis.Set(config.Ctx, helper.NowServingKey(userID, item.ServiceDate), item.TokenNumber, 24*time.Hour)

	helper.InsertQueueEvent(&item.ID, userID, models.EventCall, &userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %d called", item.TokenNumber),
		"data": fiber.Map{
			"appointment_id": item.ID,
			"token_number":   item.TokenNumber,
			"queue_status":   models.QueueInConsultation,
		},
	})
}

func completeAppointment(c *fiber.Ctx, item queueItemRow, userID int64) error {
	if item.QueueStatus != models.QueueInConsultation {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Appointment is not in consultation. Current status: %s", item.QueueStatus),
		})
	}

	// Completion propagates to the booking lifecycle as well.
	res, err := config.DB.Exec(`
		UPDATE appointments
		SET queue_status = ?, booking_status = ?, updated_at = NOW()
		WHERE id = ? AND queue_status = ?
	`, models.QueueCompleted, models.BookingCompleted, item.ID, models.QueueInConsultation)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to complete consultation",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Queue changed, reload and try again",
		})
	}

	// The token is no longer being served; drop the public mirror so the
	// poll falls back to the between-patients projection.
	config.Redis.Del(config.Ctx, helper.NowServingKey(userID, item.ServiceDate))

	helper.InsertQueueEvent(&item.ID, userID, models.EventComplete, &userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %d completed", item.TokenNumber),
		"data": fiber.Map{
			"appointment_id": item.ID,
			"token_number":   item.TokenNumber,
			"queue_status":   models.QueueCompleted,
		},
	})
}

func skipAppointment(c *fiber.Ctx, item queueItemRow, userID int64) error {
	if item.QueueStatus != models.QueueWaiting && item.QueueStatus != models.QueueInConsultation {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Appointment cannot be skipped. Current status: %s", item.QueueStatus),
		})
	}

	// Skipping never advances last_token_called.
	res, err := config.DB.Exec(`
		UPDATE appointments
		SET queue_status = ?, updated_at = NOW()
		WHERE id = ? AND queue_status IN (?, ?)
	`, models.QueueSkipped, item.ID, models.QueueWaiting, models.QueueInConsultation)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to skip appointment",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Queue changed, reload and try again",
		})
	}

	// Skipping the patient being served clears the public mirror too.
	if item.QueueStatus == models.QueueInConsultation {
		config.Redis.Del(config.Ctx, helper.NowServingKey(userID, item.ServiceDate))
	}

	helper.InsertQueueEvent(&item.ID, userID, models.EventSkip, &userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %d skipped", item.TokenNumber),
		"data": fiber.Map{
			"appointment_id": item.ID,
			"token_number":   item.TokenNumber,
			"queue_status":   models.QueueSkipped,
		},
	})
}

func hasActiveConsultation(doctorID int64, serviceDate string) (bool, error) {
	var id int64
	err := config.DB.QueryRow(`
		SELECT id FROM appointments
		WHERE doctor_id = ? AND service_date = ? AND queue_status = ?
		LIMIT 1
	`, doctorID, serviceDate, models.QueueInConsultation).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
