// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/db"
	"craftcv-server/identity"
	"craftcv-server/middlewares"
	"craftcv-server/models"
	"craftcv-server/notifications"
	"craftcv-server/reconcile"
	"craftcv-server/registry"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetUserHandler godoc
// @Summary      Get the authenticated user's profile
// @Description  Returns the local identity record.
// @Tags         users
// @Produce      json
// @Success      200 {object} GetUserResponse 	 "User retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/ [get]
func GetUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user: ", err)
		return echo.ErrUnauthorized
	}

	return c.JSON(http.StatusOK, userResponse(user, "User retrieved successfully"))
}

// UpdateUserHandler godoc
// @Summary      Update the authenticated user's profile
// @Description  Pushes the change to the external registry first and applies it locally only after the registry accepts it. An email change resets email verification.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        updateUserRequest  body  UpdateUserRequest  true  "Profile update payload"
// @Success      200 {object} GetUserResponse 	 "User updated successfully"
// @Failure      400 {object} echo.HTTPError     "Registry rejected the details"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      502 {object} echo.HTTPError     "Registry refused the service credential"
// @Failure      503 {object} echo.HTTPError     "Identity service unavailable"
// @Router       /v1/users/ [put]
func UpdateUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user: ", err)
		return echo.ErrUnauthorized
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid update user payload:", err)
		return echo.ErrBadRequest
	}

	if req.DOB != "" {
		if _, err := time.Parse("2006-01-02", req.DOB); err != nil {
			logger.Error("Malformed dob in update payload.")
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "dob must be a YYYY-MM-DD date",
			}
		}
	}

	if user.GlobalUserID == nil || *user.GlobalUserID == "" {
		logger.Error("User has no registry reference.")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This account is not linked to the identity service, please contact support.",
		}
	}

	registryClient, err := registry.NewClient(registry.Config{})
	if err != nil {
		logger.Error("Failed to initialize registry client:", err)
		return echo.ErrInternalServerError
	}

	publisher, err := reconcile.NewPublisher(reconcile.Config{})
	if err != nil {
		logger.Warn("Reconcile publisher unavailable, partial syncs will only be logged: ", err)
	} else {
		defer publisher.Close()
	}

	sync := identity.Synchronizer{
		Registry: registryClient,
		Store:    identity.NewGormStore(db.Conn),
		Audit:    identity.NewGormAuditor(db.Conn),
		Notifier: notifications.IdentityNotifier{},
	}
	if publisher != nil {
		sync.Reconciler = publisher
	}

	changes := models.IdentityProfile{
		FirstName:          req.FirstName,
		MiddleName:         req.MiddleName,
		LastName:           req.LastName,
		Gender:             req.Gender,
		DOB:                req.DOB,
		Nationality:        req.Nationality,
		CountryResidence:   req.CountryResidence,
		CityResidence:      req.CityResidence,
		ResidentialAddress: req.ResidentialAddress,
		Email:              req.Email,
	}

	updated, err := sync.Update(c.Request().Context(), *user, changes)
	if err != nil {
		logger.Errorf("Failed to update user: %v", err)
		return syncHTTPError(err)
	}

	logger.Infof("User updated successfully")
	return c.JSON(http.StatusOK, userResponse(updated, "User updated successfully"))
}

func userResponse(user *models.User, message string) GetUserResponse {
	globalUserID := ""
	if user.GlobalUserID != nil {
		globalUserID = *user.GlobalUserID
	}
	return GetUserResponse{
		ID:                 user.ID,
		GlobalUserID:       globalUserID,
		Username:           user.Username,
		Email:              user.Email,
		FirstName:          user.FirstName,
		MiddleName:         user.MiddleName,
		LastName:           user.LastName,
		Gender:             user.Gender,
		DOB:                user.DOB,
		Nationality:        user.Nationality,
		CountryResidence:   user.CountryResidence,
		CityResidence:      user.CityResidence,
		ResidentialAddress: user.ResidentialAddress,
		Locale:             user.Locale,
		MobileNumber:       user.MobileNumber,
		MobileCountryCode:  user.MobileCountryCode,
		EmailVerified:      user.EmailVerified,
		Message:            message,
	}
}
