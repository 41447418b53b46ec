// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/identity"
	"craftcv-server/phoneverify"
	"craftcv-server/registry"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// syncHTTPError translates synchronizer and registry failures into client
// responses. The kind decides whether the client should retry, fix the
// request, or contact support.
func syncHTTPError(err error) *echo.HTTPError {
	var unavailable *registry.UnavailableError
	if errors.As(err, &unavailable) {
		return &echo.HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "The identity service is temporarily unavailable, please try again later.",
		}
	}

	var rejected *registry.RejectedError
	if errors.As(err, &rejected) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "The identity service rejected the submitted details, please review them and try again.",
		}
	}

	var forbidden *registry.ForbiddenError
	if errors.As(err, &forbidden) {
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "The identity service refused the request, please contact support.",
		}
	}

	var partial *identity.PartialSyncError
	if errors.As(err, &partial) {
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "The operation could not be fully completed, please contact support.",
		}
	}

	return echo.ErrInternalServerError
}

// phoneHTTPError translates phone verification gate failures.
func phoneHTTPError(err error) *echo.HTTPError {
	var validation *phoneverify.ValidationError
	if errors.As(err, &validation) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: validation.Error(),
		}
	}

	var dispatch *phoneverify.ChallengeDispatchError
	if errors.As(err, &dispatch) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Could not send a verification code to this number, please check it and try again.",
		}
	}

	var rejectedCode *phoneverify.CodeRejectedError
	if errors.As(err, &rejectedCode) {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "The verification code is incorrect or expired, please try again.",
		}
	}

	var noChallenge *phoneverify.NoActiveChallengeError
	if errors.As(err, &noChallenge) {
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "No verification is in progress for this registration, please restart the signup.",
		}
	}

	return echo.ErrInternalServerError
}
