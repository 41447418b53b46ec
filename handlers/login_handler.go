// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/commons"
	"craftcv-server/crypto"
	"craftcv-server/db"
	"craftcv-server/models"
	"craftcv-server/registry"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// LoginHandler godoc
// @Summary      Login a user
// @Description  Authenticates a user against the local store and the external registry, and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body  LoginRequest  true  "Login request payload"
// @Success      200 {object} AuthResponse 	 "Login successful"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/login [post]
func LoginHandler(c echo.Context) error {
	logger := c.Logger()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid login request payload:", err)
		return echo.ErrBadRequest
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if req.Password == "" {
		logger.Error("Password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	newCrypto := crypto.NewCrypto()
	user := models.User{}
	err := db.Conn.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User not found.")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Credentials are incorrect, please check your email and password",
			}
		}

		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}
	invalid_password := newCrypto.VerifyPassword(req.Password, user.Password)
	if invalid_password != nil {
		logger.Error("Password verification failed.")
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Credentials are incorrect, please check your email and password",
		}
	}

	// Registry-linked identities also pass the credential through so a
	// registry-side lockout is honored. An unreachable registry does not
	// block login; the local check already succeeded.
	if user.GlobalUserID != nil && *user.GlobalUserID != "" {
		registryClient, err := registry.NewClient(registry.Config{})
		if err != nil {
			logger.Error("Failed to initialize registry client:", err)
			return echo.ErrInternalServerError
		}
		if _, err := registryClient.Login(c.Request().Context(), req.Email, req.Password); err != nil {
			var rejected *registry.RejectedError
			if errors.As(err, &rejected) {
				logger.Error("Registry rejected login credentials.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Credentials are incorrect, please check your email and password",
				}
			}
			logger.Warnf("Registry login check skipped: %v", err)
		}
	}

	tokenString, err := issueSession(c, &user)
	if err != nil {
		logger.Errorf("Failed to create session: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, AuthResponse{SessionToken: tokenString, Message: "Login successful"})
}

// issueSession creates or refreshes the user's session row and signs the jwt
// the client presents as a Bearer token. The originating address and agent
// are recorded on the row for the user's session overview.
func issueSession(c echo.Context, user *models.User) (string, error) {
	session_token, err := crypto.GenerateRandomString("st_long_", 32, "hex")
	if err != nil {
		return "", err
	}

	session_exp := time.Now().Add(30 * 24 * time.Hour)
	session_lastused := time.Now()
	session_ip := c.RealIP()
	session_agent := c.Request().UserAgent()
	session := models.Session{}

	if err := db.Conn.Where("user_id = ?", user.ID).Assign(models.Session{
		Token:      session_token,
		IPAddress:  &session_ip,
		UserAgent:  &session_agent,
		LastUsedAt: &session_lastused,
		ExpiresAt:  &session_exp,
	}).FirstOrCreate(&session).Error; err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "https://craftcv.app",
		"iat": time.Now().Unix(),
		"sub": user.Username,
		"aud": "https://api.craftcv.app",
		"jti": session_token,
		"sid": session.ID,
		"uid": user.ID,
		"exp": session.ExpiresAt.Unix(),
	})
	return token.SignedString([]byte(commons.GetEnv("JWT_SECRET", "default_very_secret_key")))
}

// LogoutHandler godoc
// @Summary      Logout a user
// @Description  Invalidates the current session.
// @Tags         auth
// @Produce      json
// @Success      200 {object} GenericResponse 	 "Logout successful"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/logout [post]
func LogoutHandler(c echo.Context) error {
	logger := c.Logger()

	session, ok := c.Get("session").(models.Session)
	if !ok {
		logger.Error("No session in context.")
		return echo.ErrUnauthorized
	}

	if err := db.Conn.Delete(&session).Error; err != nil {
		logger.Errorf("Failed to delete session: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, GenericResponse{Message: "Logout successful"})
}
