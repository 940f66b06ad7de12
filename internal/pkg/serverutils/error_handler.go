package serverutils

import (
	"errors"

	"flex-designer-be/pkg/flex"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps errors matching Err (via errors.Is) to an HTTP status.
type ErrorStatus struct {
	Err  error
	Code int
}

var defaultStatuses = []ErrorStatus{
	{Err: flex.ErrNotFound, Code: fiber.StatusNotFound},
	{Err: flex.ErrInvalidChildType, Code: fiber.StatusConflict},
	{Err: flex.ErrRootNode, Code: fiber.StatusConflict},
	{Err: flex.ErrMalformedDocument, Code: fiber.StatusUnprocessableEntity},
	{Err: flex.ErrInvalidProperty, Code: fiber.StatusBadRequest},
}

// ErrorHandlerMiddleware turns errors returned by handlers into the standard
// error envelope. statuses are checked before the document errors.
func ErrorHandlerMiddleware(statuses ...ErrorStatus) fiber.Handler {
	table := append(append([]ErrorStatus(nil), statuses...), defaultStatuses...)

	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusOf(err, table)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusOf resolves the HTTP status for err.
func StatusOf(err error, table []ErrorStatus) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, s := range table {
		if errors.Is(err, s.Err) {
			return s.Code
		}
	}
	return fiber.StatusInternalServerError
}
