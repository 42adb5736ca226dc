package controller

import (
	"practicehub-be/internal/dto"
	"practicehub-be/internal/pkg/serverutils"
	"practicehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultSearchLimit     = 10
	defaultSearchThreshold = 0.35
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Similar(ctx *fiber.Ctx) error
}

type searchController struct {
	embeddings service.IEmbeddingCacheService
}

func NewSearchController(embeddings service.IEmbeddingCacheService) ISearchController {
	return &searchController{embeddings: embeddings}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(serverutils.UserIdMiddleware)
	h.Post("", c.Similar)
}

func (c *searchController) Similar(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	var req dto.SimilaritySearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Threshold == 0 {
		req.Threshold = defaultSearchThreshold
	}

	res, err := c.embeddings.FindSimilar(ctx.Context(), userId, req.Query, req.OwnerType, req.Limit, req.Threshold)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}
