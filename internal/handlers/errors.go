package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/authz"
	"github.com/learnhub/learnhub/internal/logging"
	"github.com/learnhub/learnhub/internal/service"
)

// respondError maps service errors to transport statuses. Anything not in
// the taxonomy is an internal failure: logged with context, returned as a
// generic 500 with no internal detail.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"detail": "Please wait before trying again."})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid email or password."})
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked):
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid or expired token."})
	case errors.Is(err, service.ErrInactiveAccount):
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Account is inactive or suspended."})
	case errors.Is(err, service.ErrDuplicateAccount):
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "An account with this email or username already exists."})
	case errors.Is(err, service.ErrDuplicateSlug),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrProgressOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Not found."})
	case errors.Is(err, authz.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"detail": "You do not have permission to perform this action."})
	default:
		logging.FromContext(c.Request().Context()).Error("internal error", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Internal server error."})
	}
}
