package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"
	"database/sql"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// UpsertDoctorProfile - Create or update the caller's doctor profile and
// weekly availability. Creating the profile row is what brings the queue
// session state into existence for a doctor.
func UpsertDoctorProfile(c *fiber.Ctx) error {
	var req models.UpsertDoctorProfileRequest
	userID := c.Locals("user_id").(int64)

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Specialization == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "specialization is required",
		})
	}

	for _, a := range req.Availability {
		if !helper.ValidWeekday(a.Weekday) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   fmt.Sprintf("Invalid weekday: %s", a.Weekday),
			})
		}
	}

	_, err := config.DB.Exec(`
		INSERT INTO doctors (user_id, specialization, created_at, updated_at)
		VALUES (?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE specialization = VALUES(specialization), updated_at = NOW()
	`, userID, req.Specialization)

	if err != nil {
		log.Printf("[doctor] profile upsert failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save profile",
		})
	}

	doctor, err := helper.DoctorForUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch profile",
		})
	}

	// Replace the weekly availability wholesale.
	if _, err := config.DB.Exec(`DELETE FROM doctor_availabilities WHERE doctor_id = ?`, doctor.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save availability",
		})
	}

	for _, a := range req.Availability {
		_, err := config.DB.Exec(`
			INSERT INTO doctor_availabilities (doctor_id, weekday, start_time, end_time)
			VALUES (?, ?, ?, ?)
		`, doctor.ID, a.Weekday, a.StartTime, a.EndTime)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to save availability",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile saved",
		"data": fiber.Map{
			"doctor":       doctor,
			"availability": req.Availability,
		},
	})
}

// GetDoctorByID - Public profile read, keyed on the doctor's user id like
// the queue routes.
func GetDoctorByID(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil || doctorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	var name string
	err = config.DB.QueryRow(`SELECT name FROM users WHERE id = ? AND role = 'doctor'`, doctorID).Scan(&name)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch doctor",
		})
	}

	doctor, err := helper.DoctorForUser(int64(doctorID))
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

	availability, err := helper.AvailabilityForDoctor(doctor.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch availability",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"name":         name,
			"doctor":       doctor,
			"availability": availability,
		},
	})
}
