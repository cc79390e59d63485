package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusgrid/campus-api/database"
)

// HandleCheckHealth reports API liveness and database reachability.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
