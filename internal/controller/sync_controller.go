package controller

import (
	"practicehub-be/internal/dto"
	"practicehub-be/internal/pkg/serverutils"
	"practicehub-be/internal/service"
	ws "practicehub-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type syncController struct {
	service service.ISyncService
	hub     *ws.Hub
}

func NewSyncController(service service.ISyncService, hub *ws.Hub) ISyncController {
	return &syncController{service: service, hub: hub}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Use(serverutils.UserIdMiddleware)
	h.Post("", c.Start)
	h.Get("", c.List)

	// WebSocket, registered before the wildcard show route.
	h.Get("ws", c.ServeWs)
	h.Get(":id", c.Show)
}

// ServeWs upgrades the connection and streams the user's sync progress.
func (c *syncController) ServeWs(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	if fiberws.IsWebSocketUpgrade(ctx) {
		return fiberws.New(func(conn *fiberws.Conn) {
			ws.ServeWs(c.hub, conn, userId)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func (c *syncController) Start(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	var req dto.StartSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StartSync(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start sync", res))
}

func (c *syncController) List(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	res, err := c.service.ListSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sync sessions", res))
}

func (c *syncController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.service.GetSession(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "sync session not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show sync session", res))
}
