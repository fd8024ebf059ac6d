package handlers

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/apperror"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/lifeline/bloodbank-backend/internal/services"
	"github.com/lifeline/bloodbank-backend/internal/session"
)

// statusFor maps service errors to HTTP status codes. Business rule
// violations are 400; a taken email is the one conflict reported as 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrInvalid), errors.Is(err, apperror.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Storage failures are logged,
// reported to Sentry and hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	msg, ok := apperror.Message(err)
	if !ok {
		msg = err.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

// paramID parses the :id route parameter. It writes the 400 response itself
// and reports false when the parameter is not a UUID.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid " + name + " ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the caller resolved by middleware.RequireRole.
func actor(c *fiber.Ctx) (models.Actor, error) {
	a, ok := session.GetActor(c)
	if !ok {
		return models.Actor{}, apperror.Unauthorized("Unauthorized")
	}
	return a, nil
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
