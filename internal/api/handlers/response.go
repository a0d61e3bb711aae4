package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/models"
	"github.com/tajious/repairdesk/internal/validation"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(models.Envelope{
		Result: models.ResultSuccess,
		Data:   data,
	})
}

// fail renders a business failure. The status stays 200; clients read
// result and errCode. Internal causes are logged here and never rendered.
func fail(c *fiber.Ctx, logger *slog.Logger, err error) error {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", appErr.Err)
	}

	return c.JSON(models.Envelope{
		ErrCode: appErr.Code,
		Reason:  appErr.Message,
		Result:  models.ResultError,
	})
}

func invalid(c *fiber.Ctx, logger *slog.Logger, err error) error {
	return fail(c, logger, apperror.ErrValidation.WithMessage(validation.Message(err)))
}

func badBody(c *fiber.Ctx, logger *slog.Logger) error {
	return fail(c, logger, apperror.ErrValidation.WithMessage("Invalid request body"))
}

// ErrorHandler is the fiber.Config ErrorHandler. It keeps router-level
// failures (unknown route, panics recovered upstream) in the envelope shape.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		appErr := apperror.ErrInternal

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				appErr = apperror.ErrRecordNotFound.WithMessage("Route not found")
			case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
				appErr = apperror.ErrValidation.WithMessage(fiberErr.Message)
			}
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(status).JSON(models.Envelope{
			ErrCode: appErr.Code,
			Reason:  appErr.Message,
			Result:  models.ResultError,
		})
	}
}

// Check is a named dependency probe for the health endpoint.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	logger *slog.Logger
}

func NewHealthHandler(checks map[string]Check, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(c.UserContext()); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.Envelope{
			ErrCode: apperror.ErrInternal.Code,
			Reason:  "One or more dependencies are unavailable",
			Result:  models.ResultError,
			Data:    status,
		})
	}
	return ok(c, status)
}
