package api

import (
	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct{}

func NewCheckHandler() *CheckHandler {
	return &CheckHandler{}
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "message": "document service is running"})
}

func (h CheckHandler) HandleReady(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ready": true, "status": "running"})
}
