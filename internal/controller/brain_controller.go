package controller

import (
	"github.com/gofiber/fiber/v2"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/pkg/serverutils"
	"paper-brain-be/internal/service"
)

type IBrainController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Load(ctx *fiber.Ctx) error
}

type brainController struct {
	service service.ISessionService
}

func NewBrainController(service service.ISessionService) IBrainController {
	return &brainController{service: service}
}

func (c *brainController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/brain/v1")
	h.Post("/search", c.Search)
	h.Post("/load", c.Load)
}

func (c *brainController) Search(ctx *fiber.Ctx) error {
	var req dto.BrainSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search completed", res))
}

func (c *brainController) Load(ctx *fiber.Ctx) error {
	var req dto.BrainLoadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.LoadPapers(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Load completed", res))
}
