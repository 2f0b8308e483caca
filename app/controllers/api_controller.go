package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lromand/matchpoint/internal/pkg/database"
)

// HandleHealth reports service liveness and database reachability.
func HandleHealth(c *fiber.Ctx) error {
	dbStatus := "ok"
	db := database.GetDB()
	if db == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   "up",
		"database": dbStatus,
	})
}
