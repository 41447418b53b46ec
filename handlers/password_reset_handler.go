// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/crypto"
	"craftcv-server/db"
	"craftcv-server/identity"
	"craftcv-server/models"
	"craftcv-server/notifications"
	"craftcv-server/passwordcheck"
	"craftcv-server/registry"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ForgotPasswordHandler godoc
// @Summary      Request a password reset
// @Description  Sends a reset token to the account's email address. Responds identically whether or not the address is registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        forgotPasswordRequest  body  ForgotPasswordRequest  true  "Forgot password payload"
// @Success      200 {object} GenericResponse 	 "Reset email dispatched"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/forgot-password [post]
func ForgotPasswordHandler(c echo.Context) error {
	logger := c.Logger()

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid forgot password payload:", err)
		return echo.ErrBadRequest
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	response := GenericResponse{Message: "If this email is registered, a reset link has been sent to it."}

	user := models.User{}
	if err := db.Conn.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnf("Password reset requested for unknown email")
			return c.JSON(http.StatusOK, response)
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	token, err := crypto.GenerateRandomString("prt_", 24, "hex")
	if err != nil {
		logger.Errorf("Failed to generate reset token: %v", err)
		return echo.ErrInternalServerError
	}

	requestedIP := c.RealIP()
	reset := models.PasswordReset{
		Token:       token,
		UserID:      user.ID,
		RequestedIP: &requestedIP,
		ExpiresAt:   time.Now().Add(1 * time.Hour),
	}
	if err := db.Conn.Create(&reset).Error; err != nil {
		logger.Errorf("Failed to create password reset: %v", err)
		return echo.ErrInternalServerError
	}

	notifications.PasswordResetRequested(user.Email, user.FirstName, token)
	logger.Infof("Password reset token issued")
	return c.JSON(http.StatusOK, response)
}

// ResetPasswordHandler godoc
// @Summary      Reset a password with a token
// @Description  Replaces the password in the external registry first, then locally, and invalidates open sessions.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        resetPasswordRequest  body  ResetPasswordRequest  true  "Reset password payload"
// @Success      200 {object} GenericResponse 	 "Password reset"
// @Failure      400 {object} echo.HTTPError     "Bad request or invalid token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      503 {object} echo.HTTPError     "Identity service unavailable"
// @Router       /v1/auth/reset-password [post]
func ResetPasswordHandler(c echo.Context) error {
	logger := c.Logger()

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid reset password payload:", err)
		return echo.ErrBadRequest
	}

	if req.Token == "" || req.Password == "" {
		logger.Error("Token and password are required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "token and password fields are required",
		}
	}

	if err := passwordcheck.ValidatePassword(c.Request().Context(), req.Password); err != nil {
		logger.Error("Password validation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Invalid password: %v", err.Error()),
		}
	}

	reset := models.PasswordReset{}
	err := db.Conn.Where("token = ? AND is_used = ?", req.Token, false).First(&reset).Error
	if err != nil || reset.ExpiresAt.Before(time.Now()) {
		logger.Error("Reset token not found, used, or expired.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "This reset link is invalid or has expired, please request a new one.",
		}
	}

	user := models.User{}
	if err := db.Conn.Where("id = ?", reset.UserID).First(&user).Error; err != nil {
		logger.Errorf("Failed to find user for reset: %v", err)
		return echo.ErrInternalServerError
	}

	auditor := identity.NewGormAuditor(db.Conn)
	globalUserID := ""
	if user.GlobalUserID != nil {
		globalUserID = *user.GlobalUserID
	}

	// Registry first: the local password must not change if the registry
	// copy cannot.
	if globalUserID != "" {
		registryClient, err := registry.NewClient(registry.Config{})
		if err != nil {
			logger.Error("Failed to initialize registry client:", err)
			return echo.ErrInternalServerError
		}
		if err := registryClient.ResetPassword(c.Request().Context(), user.Email, req.Password); err != nil {
			logger.Errorf("Registry password reset failed: %v", err)
			auditor.Record(c.Request().Context(), models.PasswordSync, models.Failed, globalUserID, user.Email, err.Error())
			return syncHTTPError(err)
		}
	}

	newCrypto := crypto.NewCrypto()
	hash, err := newCrypto.HashPassword(req.Password)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	if err := db.Conn.Model(&user).Update("password", hash).Error; err != nil {
		logger.Errorf("Failed to update password: %v", err)
		auditor.Record(c.Request().Context(), models.PasswordSync, models.Partial, globalUserID, user.Email, err.Error())
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "The operation could not be fully completed, please contact support.",
		}
	}

	if err := db.Conn.Model(&reset).Update("is_used", true).Error; err != nil {
		logger.Errorf("Failed to mark reset token used: %v", err)
	}
	if err := db.Conn.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
		logger.Errorf("Failed to invalidate sessions: %v", err)
	}

	auditor.Record(c.Request().Context(), models.PasswordSync, models.Synced, globalUserID, user.Email, "")
	logger.Infof("Password reset completed")
	return c.JSON(http.StatusOK, GenericResponse{Message: "Password reset successfully, please login with your new password."})
}
