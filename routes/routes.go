// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"craftcv-server/commons"
	"craftcv-server/handlers"
	"craftcv-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering v1 routes")
	api_v1 := e.Group("/v1")
	api_v1.POST("/auth/signup", handlers.SignupHandler)
	api_v1.POST("/auth/signup/phone", handlers.SignupPhoneHandler)
	api_v1.POST("/auth/signup/verify", handlers.SignupVerifyHandler)
	api_v1.POST("/auth/login", handlers.LoginHandler)
	api_v1.POST("/auth/logout", handlers.LogoutHandler, middlewares.VerifySessionMiddleware)
	api_v1.POST("/auth/forgot-password", handlers.ForgotPasswordHandler)
	api_v1.POST("/auth/reset-password", handlers.ResetPasswordHandler)
	api_v1.GET("/registry/country-list", handlers.GetCountryListHandler)
	api_v1.GET("/users/", handlers.GetUserHandler, middlewares.VerifySessionMiddleware)
	api_v1.PUT("/users/", handlers.UpdateUserHandler, middlewares.VerifySessionMiddleware)
	api_v1.GET("/sync-events", handlers.GetSyncEventsHandler, middlewares.VerifySessionMiddleware)
	commons.Logger.Info("v1 routes registered successfully")
}
