package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"

	"github.com/gofiber/fiber/v2"
)

// QueueControl - Pause or resume the caller's queue. While paused no new
// patient can be called; an already-running consultation is unaffected and
// can still be completed or skipped.
func QueueControl(c *fiber.Ctx) error {
	var req models.QueueControlRequest
	userID := c.Locals("user_id").(int64)

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
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

	paused := 0
	if req.IsPaused {
		paused = 1
	}

	if req.Session != nil {
		_, err = config.DB.Exec(`
			UPDATE doctors
			SET is_paused = ?, current_session = ?, updated_at = NOW()
			WHERE id = ?
		`, paused, *req.Session, doctor.ID)
	} else {
		_, err = config.DB.Exec(`
			UPDATE doctors
			SET is_paused = ?, updated_at = NOW()
			WHERE id = ?
		`, paused, doctor.ID)
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update queue control",
		})
	}

	event := models.EventResume
	message := "Queue resumed"
	if req.IsPaused {
		event = models.EventPause
		message = "Queue paused"
	}
	helper.InsertQueueEvent(nil, userID, event, &userID)

	state := doctor.QueueState
	state.IsPaused = req.IsPaused
	if req.Session != nil {
		state.CurrentSession = *req.Session
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data": fiber.Map{
			"queue_state": state,
		},
	})
}
