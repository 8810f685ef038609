package http

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/veridian-dev/auth-api/internal/service"
	"github.com/veridian-dev/auth-api/internal/util"
)

// respondError translates the service error taxonomy into HTTP statuses.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrDuplicateAccount):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked):
		return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
	case errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrNoOTPPending),
		errors.Is(err, service.ErrOTPMismatch),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrInvalidRequestType),
		errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrEmailDeliveryFailed):
		return c.JSON(http.StatusInternalServerError, util.Error(err.Error()))
	default:
		c.Logger().Errorf("unhandled service error: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}

// respondValidationError reports structured per-field errors for malformed
// input, before any business logic runs.
func respondValidationError(c echo.Context, err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return c.JSON(http.StatusBadRequest, util.Envelope{
			"message": "Validation error",
			"errors":  fieldErrs,
		})
	}
	return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
}
