package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// TogglePriority - Flip an appointment between Normal and Critical. Marking
// a waiting patient Critical moves them ahead of all Normal patients on the
// next read; they still queue behind earlier Critical tokens.
func TogglePriority(c *fiber.Ctx) error {
	var req models.TogglePriorityRequest
	userID := c.Locals("user_id").(int64)

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
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

	if item.DoctorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You do not own this appointment",
		})
	}

	if item.BookingStatus != models.BookingConfirmed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Booking is not confirmed. Current status: %s", item.BookingStatus),
		})
	}

	if models.IsTerminal(item.QueueStatus) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Priority is locked. Current status: %s", item.QueueStatus),
		})
	}

	newPriority := models.PriorityCritical
	if item.Priority == models.PriorityCritical {
		newPriority = models.PriorityNormal
	}

	// Conditional on the old value so two concurrent toggles cannot cancel
	// each other out silently.
	res, err := config.DB.Exec(`
		UPDATE appointments
		SET priority = ?, updated_at = NOW()
		WHERE id = ? AND priority = ?
	`, newPriority, item.ID, item.Priority)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update priority",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Priority changed, reload and try again",
		})
	}

	helper.InsertQueueEvent(&item.ID, userID, models.EventPriority, &userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %d is now %s", item.TokenNumber, newPriority),
		"data": fiber.Map{
			"appointment_id": item.ID,
			"token_number":   item.TokenNumber,
			"priority":       newPriority,
		},
	})
}
