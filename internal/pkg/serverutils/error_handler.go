package serverutils

import (
	"errors"

	"marknotes-be/internal/pkg/logger"
	"marknotes-be/pkg/search"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps handler errors to responses. Client errors
// keep their message; everything else is logged for operators and the
// client only sees a generic failure, no internal detail.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		if errors.Is(err, search.ErrInvalidAgeSelector) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		}

		log.Error("http", "request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
