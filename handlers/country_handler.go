// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/registry"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
)

// countryCache avoids hitting the registry on every render of a country
// selector; the list changes rarely.
var countryCache = gocache.New(6*time.Hour, 1*time.Hour)

const countryCacheKey = "registry_countries"

// GetCountryListHandler godoc
// @Summary      List selectable countries
// @Description  Returns the registry's country list, cached for a few hours.
// @Tags         registry
// @Produce      json
// @Success      200 {object} CountryListResponse  "Countries retrieved successfully"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      503 {object} echo.HTTPError     "Identity service unavailable"
// @Router       /v1/registry/country-list [get]
func GetCountryListHandler(c echo.Context) error {
	logger := c.Logger()

	if cached, found := countryCache.Get(countryCacheKey); found {
		if countries, ok := cached.([]string); ok {
			return c.JSON(http.StatusOK, CountryListResponse{
				Data:    countries,
				Message: "Countries retrieved successfully",
			})
		}
	}

	registryClient, err := registry.NewClient(registry.Config{})
	if err != nil {
		logger.Error("Failed to initialize registry client:", err)
		return echo.ErrInternalServerError
	}

	countries, err := registryClient.CountryList(c.Request().Context())
	if err != nil {
		logger.Errorf("Failed to fetch country list: %v", err)
		return syncHTTPError(err)
	}

	countryCache.SetDefault(countryCacheKey, countries)
	return c.JSON(http.StatusOK, CountryListResponse{
		Data:    countries,
		Message: "Countries retrieved successfully",
	})
}
