package serverutils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"ai-bizops-be/pkg/errs"
)

// BaseResponse is the envelope for every JSON response.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the failures
// into a single readable message.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Field()+" failed on '"+fe.Tag()+"'")
			}
			return errors.New(strings.Join(msgs, ", "))
		}
		return err
	}
	return nil
}

// ErrorHandlerMiddleware recovers panics and maps domain errors that
// escaped the controllers to an HTTP status.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		code := StatusForError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusForError maps the error taxonomy to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errs.IsKind(err, errs.KindNotFound):
		return fiber.StatusNotFound
	case errs.IsKind(err, errs.KindParse), errs.IsKind(err, errs.KindDataQuery):
		return fiber.StatusBadRequest
	case errs.IsKind(err, errs.KindProvider):
		return fiber.StatusBadGateway
	case errs.IsKind(err, errs.KindIndexing):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
