package server

import (
	"errors"
	"log/slog"

	"devconnect/internal/middleware"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError writes err with the status its code maps to. Internal
// errors are logged with request context and reported as "Server Error".
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the request body into dst. Malformed bodies are reported
// as validation errors.
func parseBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// currentUser returns the verified caller id. Routes using it sit behind
// AuthRequired, so an empty id means the middleware was skipped.
func currentUser(c *fiber.Ctx) (string, error) {
	id := middleware.CurrentUserID(c)
	if id == "" {
		return "", models.NewAuthError(models.ReasonMissingToken, "No token, authorization denied")
	}
	return id, nil
}
