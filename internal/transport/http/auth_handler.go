package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veridian-dev/auth-api/internal/service"
	"github.com/veridian-dev/auth-api/internal/util"
	"github.com/veridian-dev/auth-api/internal/validation"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register wires the auth routes. Resend and logout sit behind the bearer
// middleware, matching the original route table.
func (h *AuthHandler) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", h.register)
	g.POST("/verify-email", h.verifyEmail)
	g.POST("/sign-in", h.signIn)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/verify-otp", h.verifyOTP)
	g.POST("/reset-password/:token", h.resetPassword)
	g.POST("/resend-email", h.resendEmail, requireAuth)
	g.POST("/logout", h.logout, requireAuth)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req validation.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	result, err := h.auth.Register(c.Request().Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, AuthTokenResponse{
		Message:   "User registered successfully. Please verify your email.",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(timeFormat),
		User:      newAuthUser(result.User),
	})
}

func (h *AuthHandler) verifyEmail(c echo.Context) error {
	var req validation.VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.auth.VerifyEmail(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthUserResponse{
		Message: "Email verified successfully",
		User:    newAuthUser(user),
	})
}

func (h *AuthHandler) resendEmail(c echo.Context) error {
	var req validation.ResendEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.auth.ResendEmail(c.Request().Context(), req.Email, req.Type)
	if err != nil {
		return respondError(c, err)
	}

	message := "New verification OTP sent successfully"
	if req.Type == 2 {
		message = "Password reset OTP sent successfully"
	}
	return c.JSON(http.StatusOK, AuthUserResponse{
		Message: message,
		User:    newAuthUser(user),
	})
}

func (h *AuthHandler) signIn(c echo.Context) error {
	var req validation.SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	result, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Unverified accounts get a fresh code and a distinct status, not a
		// session token.
		if errors.Is(err, service.ErrEmailNotVerified) && result != nil {
			return c.JSON(http.StatusForbidden, AuthUserResponse{
				Message: "Email not verified. A new verification OTP has been sent.",
				User:    newAuthUser(result.User),
			})
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{
		Message:   "Sign in successful",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(timeFormat),
		User:      newAuthUser(result.User),
	})
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req validation.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.auth.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthUserResponse{
		Message: "Password reset OTP sent successfully",
		User:    newAuthUser(user),
	})
}

func (h *AuthHandler) verifyOTP(c echo.Context) error {
	var req validation.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	result, err := h.auth.VerifyResetOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{
		Message:   "OTP verified successfully",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(timeFormat),
		User:      newAuthUser(result.User),
	})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	token := c.Param("token")

	var req validation.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.auth.ResetPassword(c.Request().Context(), token, req.NewPassword)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthUserResponse{
		Message: "Password reset successfully",
		User:    newAuthUser(user),
	})
}

func (h *AuthHandler) logout(c echo.Context) error {
	token, ok := CurrentToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Logged out successfully"})
}
