package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIdMiddleware resolves the caller from the X-User-Id header set by the
// authenticating gateway in front of this service.
func UserIdMiddleware(ctx *fiber.Ctx) error {
	userIdStr := ctx.Get("X-User-Id")
	if userIdStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing X-User-Id header"})
	}

	if _, err := uuid.Parse(userIdStr); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid X-User-Id header"})
	}

	ctx.Locals("user_id", userIdStr)
	return ctx.Next()
}

// UserId reads the parsed caller id out of the request locals.
func UserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
