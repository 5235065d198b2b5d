package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-coupon-service/internal/service"
)

// errUnauthorized is the error code for requests without an identity.
const errUnauthorized = "UNAUTHORIZED"

// Response is the envelope every endpoint replies with.
// Error is set only on failures and holds the error kind.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(status).JSON(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{
		StatusCode: status,
		Data:       fiber.Map{},
		Message:    message,
		Success:    false,
		Error:      code,
	})
}

// failWith maps a service error onto the envelope. Internal errors are
// logged and reported with a generic message.
func failWith(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	switch kind {
	case service.KindValidation:
		return fail(c, fiber.StatusBadRequest, kind.String(), err.Error())
	case service.KindNotFound:
		return fail(c, fiber.StatusNotFound, kind.String(), err.Error())
	default:
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("request failed")
		return fail(c, fiber.StatusInternalServerError, kind.String(), "internal server error")
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, service.KindValidation.String(), message)
}

// formatValidationError converts the first validator error to a client message.
// A missing field on create yields the same message for every field.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return service.ErrInvalidRequest.Error()
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return service.ErrMissingFields.Error()
		}
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "notblank":
		return field + " cannot be whitespace only"
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "cents":
		return field + " must have at most 2 decimal places"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return field + " is invalid"
	}
}
