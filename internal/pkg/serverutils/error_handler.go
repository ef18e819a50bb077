package serverutils

import (
	"errors"
	"fmt"

	"paper-brain-be/internal/dto"
	"paper-brain-be/pkg/chat"
	"paper-brain-be/pkg/quota"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors returned by controllers into the
// standard envelope with the right status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorBody{
				Success:         false,
				ErrorType:       "quota_exhausted",
				CooldownMinutes: exceeded.MinutesLeft,
				Message:         fmt.Sprintf("Quota exhausted. Try again in %d minutes.", exceeded.MinutesLeft),
			})
		}

		var provider *dto.ProviderExhaustedError
		if errors.As(err, &provider) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorBody{
				Success:         false,
				ErrorType:       "api_quota_exhausted",
				CooldownMinutes: provider.CooldownMinutes,
				Message:         fmt.Sprintf("API quota exhausted. Try again in %d minutes.", provider.CooldownMinutes),
			})
		}

		if errors.Is(err, dto.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorBody{
				Success: false,
				Message: "Session not found",
			})
		}

		if errors.Is(err, chat.ErrNoPapersLoaded) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorBody{
				Success: false,
				Message: "No papers loaded. Please load papers first using /api/brain/v1/load",
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
			Success: false,
			Message: "Internal server error",
		})
	}
}
