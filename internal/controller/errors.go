package controller

import (
	"flex-designer-be/internal/pkg/serverutils"
	"flex-designer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatuses maps service errors to HTTP statuses for
// serverutils.ErrorHandlerMiddleware.
var ErrorStatuses = []serverutils.ErrorStatus{
	{Err: service.ErrDesignNotFound, Code: fiber.StatusNotFound},
	{Err: service.ErrMissingAPIKey, Code: fiber.StatusBadRequest},
	{Err: service.ErrEmptyInstruction, Code: fiber.StatusBadRequest},
	{Err: service.ErrUnsupportedAIMode, Code: fiber.StatusBadRequest},
	{Err: service.ErrGenerationFailed, Code: fiber.StatusBadGateway},
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return serverutils.ValidateRequest(req)
}
