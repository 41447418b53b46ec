// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"craftcv-server/crypto"
	"craftcv-server/db"
	"craftcv-server/identity"
	"craftcv-server/models"
	"craftcv-server/notifications"
	"craftcv-server/passwordcheck"
	"craftcv-server/phoneverify"
	"craftcv-server/reconcile"
	"craftcv-server/registry"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SignupHandler godoc
// @Summary      Start a registration
// @Description  Accepts the profile step of a registration. Nothing is persisted until the phone verification completes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body  SignupRequest  true  "Signup profile payload"
// @Success      200 {object} SignupResponse 	 "Profile accepted"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      409 {object} echo.HTTPError     "Duplicate user"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/signup [post]
func SignupHandler(c echo.Context) error {
	logger := c.Logger()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid signup request payload:", err)
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

	if err := passwordcheck.ValidatePassword(c.Request().Context(), req.Password); err != nil {
		logger.Error("Password validation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Invalid password: %v", err.Error()),
		}
	}

	count := db.Conn.Where("email = ?", req.Email).First(&models.User{}).RowsAffected
	if count > 0 {
		logger.Errorf("This email is already registered.")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This email is already registered, please try another one.",
		}
	}

	newCrypto := crypto.NewCrypto()
	hash, err := newCrypto.HashPassword(req.Password)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	username, err := deriveUsername(req.Email)
	if err != nil {
		logger.Errorf("Failed to derive username: %v", err)
		return echo.ErrInternalServerError
	}

	pending, err := newPendingRegistration()
	if err != nil {
		logger.Errorf("Failed to create pending registration: %v", err)
		return echo.ErrInternalServerError
	}
	pending.Password = req.Password
	pending.PasswordHash = hash

	profile := models.IdentityProfile{
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
		Username:           username,
		Locale:             req.Locale,
	}
	if err := pending.Gate.SubmitProfile(profile); err != nil {
		dropPendingRegistration(pending.ID)
		logger.Error("Profile step rejected: ", err)
		return phoneHTTPError(err)
	}

	logger.Infof("Registration started, awaiting phone number")
	return c.JSON(http.StatusOK, SignupResponse{
		PendingID: pending.ID,
		Step:      pending.Gate.State().String(),
		Message:   "Profile accepted, submit a phone number to continue",
	})
}

// SignupPhoneHandler godoc
// @Summary      Submit a phone number for verification
// @Description  Dispatches a one-time code to the submitted number. Resubmitting replaces the outstanding challenge.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupPhoneRequest  body  SignupPhoneRequest  true  "Phone step payload"
// @Success      200 {object} SignupResponse 	 "Challenge dispatched"
// @Failure      400 {object} echo.HTTPError     "Bad request or undeliverable number"
// @Failure      404 {object} echo.HTTPError     "Unknown or expired pending registration"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/signup/phone [post]
func SignupPhoneHandler(c echo.Context) error {
	logger := c.Logger()

	var req SignupPhoneRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid phone step payload:", err)
		return echo.ErrBadRequest
	}

	if req.CallingCode == "" || req.NationalNumber == "" {
		logger.Error("Phone number fields are required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "country_code and mobile fields are required",
		}
	}

	pending, err := getPendingRegistration(req.PendingID)
	if err != nil {
		logger.Error("Pending registration lookup failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "This registration has expired or does not exist, please start over.",
		}
	}

	if req.RecaptchaToken != "" {
		if aware, ok := pending.Gate.Challenger().(interface{ SetRecaptchaToken(string) }); ok {
			aware.SetRecaptchaToken(req.RecaptchaToken)
		}
	}

	if err := pending.Gate.SubmitPhone(c.Request().Context(), req.CallingCode, req.NationalNumber); err != nil {
		logger.Error("Phone step failed: ", err)
		return phoneHTTPError(err)
	}

	logger.Infof("Phone challenge dispatched")
	return c.JSON(http.StatusOK, SignupResponse{
		PendingID: pending.ID,
		Step:      pending.Gate.State().String(),
		Message:   "Verification code sent, submit it to complete the registration",
	})
}

// SignupVerifyHandler godoc
// @Summary      Confirm the one-time code and finalize the registration
// @Description  Confirms the code, creates the identity in the external registry and then locally. A wrong code may be retried; a stale submission restarts the flow.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupVerifyRequest  body  SignupVerifyRequest  true  "Code step payload"
// @Success      201 {object} SignupVerifyResponse  "Registration complete"
// @Failure      400 {object} echo.HTTPError     "Wrong code or rejected details"
// @Failure      404 {object} echo.HTTPError     "Unknown or expired pending registration"
// @Failure      409 {object} echo.HTTPError     "No challenge in progress"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      503 {object} echo.HTTPError     "Identity service unavailable"
// @Router       /v1/auth/signup/verify [post]
func SignupVerifyHandler(c echo.Context) error {
	logger := c.Logger()

	var req SignupVerifyRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid code step payload:", err)
		return echo.ErrBadRequest
	}

	if req.Code == "" {
		logger.Error("Code is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "code field is required",
		}
	}

	pending, err := getPendingRegistration(req.PendingID)
	if err != nil {
		logger.Error("Pending registration lookup failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "This registration has expired or does not exist, please start over.",
		}
	}

	claim, err := resolveClaim(c.Request().Context(), pending, req.Code)
	if err != nil {
		logger.Error("Code step failed: ", err)
		return phoneHTTPError(err)
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

	user, err := sync.Finalize(c.Request().Context(), identity.FinalizeInput{
		Profile:      pending.Gate.Profile(),
		Password:     pending.Password,
		PasswordHash: pending.PasswordHash,
		Claim:        claim,
	})
	if err != nil {
		logger.Errorf("Failed to finalize registration: %v", err)
		var rejected *registry.RejectedError
		if errors.As(err, &rejected) {
			// The registry will never accept these details; the flow
			// must restart from the profile step.
			dropPendingRegistration(pending.ID)
		}
		var noChallenge *phoneverify.NoActiveChallengeError
		if errors.As(err, &noChallenge) {
			return phoneHTTPError(err)
		}
		return syncHTTPError(err)
	}

	dropPendingRegistration(pending.ID)
	notifications.SignupVerification(user.Email, user.FirstName)

	sessionToken, err := issueSession(c, user)
	if err != nil {
		// The account exists either way; the client can still login.
		logger.Errorf("Failed to create session after signup: %v", err)
	}

	logger.Infof("User signed up successfully")
	globalUserID := ""
	if user.GlobalUserID != nil {
		globalUserID = *user.GlobalUserID
	}
	return c.JSON(http.StatusCreated, SignupVerifyResponse{
		ID:            user.ID,
		GlobalUserID:  globalUserID,
		Username:      user.Username,
		EmailVerified: user.EmailVerified,
		SessionToken:  sessionToken,
		Message:       "Registration complete",
	})
}

// resolveClaim confirms the submitted code, or reuses the claim preserved
// from an earlier verify attempt whose finalize failed on a retryable error.
// Without it a retry after a registry outage would find the gate already
// past the code step and be forced to restart the whole flow.
func resolveClaim(ctx context.Context, pending *pendingRegistration, code string) (*phoneverify.Claim, error) {
	if pending.Claim != nil {
		return pending.Claim, nil
	}
	if err := pending.Gate.SubmitCode(ctx, code); err != nil {
		return nil, err
	}
	claim, err := pending.Gate.TakeClaim()
	if err != nil {
		return nil, err
	}
	pending.Claim = claim
	return claim, nil
}

// deriveUsername builds a unique handle from the email local part plus a
// random suffix.
func deriveUsername(email string) (string, error) {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	cleaned := strings.Builder{}
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			cleaned.WriteRune(r)
		}
	}
	base := strings.Trim(cleaned.String(), ".")
	if base == "" {
		base = "user"
	}
	suffix, err := crypto.GenerateRandomString("", 4, "hex")
	if err != nil {
		return "", err
	}
	return base + "." + suffix, nil
}
