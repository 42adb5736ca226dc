package controller

import (
	"practicehub-be/internal/pkg/serverutils"
	"practicehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUsageController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
}

type usageController struct {
	guardrails service.IGuardrailService
}

func NewUsageController(guardrails service.IGuardrailService) IUsageController {
	return &usageController{guardrails: guardrails}
}

func (c *usageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/usage/v1")
	h.Use(serverutils.UserIdMiddleware)
	h.Get("", c.Summary)
}

func (c *usageController) Summary(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	res, err := c.guardrails.UsageSummary(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get usage", res))
}
