package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"project/backend/utils"
)

// LoggingMiddleware logs one structured line per handled request.
func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Info("request",
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String(),
		)

		return err
	}
}
