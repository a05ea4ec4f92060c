package handler

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"database/sql"

	"github.com/gofiber/fiber/v2"
)

// GetDoctorNow - Cheapest possible "now serving" read for the tight public
// poll. Served from the Redis mirror written at call time; falls back to
// the doctors row on a cache miss.
func GetDoctorNow(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("doctorId")
	if err != nil || doctorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	today := helper.Today()

	if token, err := config.Redis.Get(config.Ctx, helper.NowServingKey(int64(doctorID), today)).Int(); err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"doctor_id":   doctorID,
				"now_serving": token,
			},
		})
	}

	var (
		lastToken      int
		lastCalledDate sql.NullString
	)
	err = config.DB.QueryRow(`
		SELECT last_token_called, DATE_FORMAT(last_called_date, '%Y-%m-%d')
		FROM doctors WHERE user_id = ?
	`, doctorID).Scan(&lastToken, &lastCalledDate)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch now serving",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"doctor_id":   doctorID,
			"now_serving": helper.EffectiveLastToken(lastToken, lastCalledDate.String, today),
		},
	})
}
