package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veridian-dev/auth-api/internal/service"
	"github.com/veridian-dev/auth-api/internal/util"
	"github.com/veridian-dev/auth-api/internal/validation"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/users", requireAuth)
	g.GET("/profile", h.getProfile)
	g.PATCH("/profile", h.updateProfile)
	g.DELETE("/profile", h.deleteAccount)
}

func (h *UserHandler) getProfile(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	user, err := h.users.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newAuthUser(user))
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	var req validation.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.users.UpdateUsername(c.Request().Context(), claims.UserID, req.UserName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, AuthUserResponse{
		Message: "Profile updated successfully",
		User:    newAuthUser(user),
	})
}

func (h *UserHandler) deleteAccount(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	if err := h.users.DeleteAccount(c.Request().Context(), claims.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Account deleted successfully"})
}
