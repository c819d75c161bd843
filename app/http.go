package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-boards/auth"
	"github.com/goliatone/go-boards/middleware/errorware"
	"github.com/uptrace/bun"
)

const healthTimeout = 2 * time.Second

// ErrorHandler renders every error as an ErrorResponse. Internal causes
// are logged and never sent to the client.
func ErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return errorware.New(errorware.Config{
		Logger:    logger,
		RequestID: requestID,
	})
}

// RequestLogger logs one line per request once the handler chain returns
func RequestLogger(logger auth.Logger) fiber.Handler {
	responder := errorware.NewResponder()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = responder.Status(err)
		}

		logger.Info("request",
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", time.Since(start).String(),
			"request_id", requestID(c),
		)

		return err
	}
}

// HealthHandler reports whether the database answers a ping
func HealthHandler(db *bun.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": "down",
			})
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": "up",
		})
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
