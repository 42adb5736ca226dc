package serverutils

import (
	"errors"

	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps service failures to HTTP statuses: validation to 400,
// guardrail blocks to 429, everything else to 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{Message: fiberErr.Message})
		}

		var failure *service.StageFailure
		if errors.As(err, &failure) {
			switch failure.Kind {
			case service.FailureValidation:
				return ctx.Status(fiber.StatusBadRequest).JSON(ErrorBody{Message: failure.Err.Error()})
			case service.FailureBlocked:
				return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorBody{Message: failure.Err.Error()})
			case service.FailureDuplicate:
				return ctx.Status(fiber.StatusConflict).JSON(ErrorBody{Message: failure.Err.Error()})
			}
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{Message: "Internal server error"})
	}
}
