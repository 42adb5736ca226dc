package controller

import (
	"practicehub-be/internal/dto"
	"practicehub-be/internal/pkg/serverutils"
	"practicehub-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Enqueue(ctx *fiber.Ctx) error
	EnqueueBatch(ctx *fiber.Ctx) error
	Run(ctx *fiber.Ctx) error
	Sweep(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type jobController struct {
	queue      service.IJobQueueService
	runner     service.IJobRunnerService
	claimLimit int
}

func NewJobController(queue service.IJobQueueService, runner service.IJobRunnerService, claimLimit int) IJobController {
	return &jobController{queue: queue, runner: runner, claimLimit: claimLimit}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")

	// Scheduler hook, no caller identity involved.
	h.Post("sweep", c.Sweep)

	h.Use(serverutils.UserIdMiddleware)
	h.Post("", c.Enqueue)
	h.Post("batch", c.EnqueueBatch)
	h.Post("run", c.Run)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *jobController) Enqueue(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	var req dto.EnqueueJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queue.Enqueue(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success enqueue job", res))
}

func (c *jobController) EnqueueBatch(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	var req dto.EnqueueBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queue.EnqueueBatch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success enqueue batch", res))
}

func (c *jobController) Run(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)

	var req dto.RunJobsRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	limit := req.Limit
	if limit == 0 {
		limit = c.claimLimit
	}

	res, err := c.runner.ProcessUserJobs(ctx.Context(), userId, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run jobs", res))
}

func (c *jobController) Sweep(ctx *fiber.Ctx) error {
	res, err := c.runner.ProcessPendingJobs(ctx.Context(), c.claimLimit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sweep jobs", res))
}

func (c *jobController) List(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)
	status := ctx.Query("status")

	res, err := c.queue.ListJobs(ctx.Context(), userId, status)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get jobs", res))
}

func (c *jobController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.UserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}

	res, err := c.queue.GetJob(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show job", res))
}
