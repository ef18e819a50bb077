package controller

import (
	"github.com/gofiber/fiber/v2"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/pkg/serverutils"
	"paper-brain-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.ISessionService
}

func NewChatController(service service.ISessionService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/message", c.SendMessage)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message answered", res))
}
