package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/internal/api/presenters"
)

var errInternal = errors.New(domain.MessageFailedProcessRequest)

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedAccess), errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrVersionConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInferenceNotConfigured), errors.Is(err, domain.ErrMailerUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// failure writes the error response for err. Unclassified errors are logged
// and replaced by a generic error so storage and upstream detail stays internal.
func failure(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		logger.Error(message,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		err = errInternal
	}
	return presenters.ErrorResponse(c, status, message, err)
}

func userIDOf(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
