package controller

import (
	"github.com/gofiber/fiber/v2"

	"paper-brain-be/internal/pkg/serverutils"
	"paper-brain-be/internal/service"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	GetSessionRequests(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
	h.Get("/sessions/:id/requests", c.GetSessionRequests)
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 50)
	level := ctx.Query("level")

	logs, err := c.service.GetSystemLogs(ctx.Context(), page, limit, level)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	entry, err := c.service.GetLogDetail(ctx.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}

func (c *adminController) GetSessionRequests(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	metrics, err := c.service.GetSessionMetrics(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session requests", metrics))
}
