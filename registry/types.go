// SPDX-License-Identifier: GPL-3.0-only

package registry

import (
	"encoding/json"
	"net/http"
	"net/url"
)

type Config struct {
	baseURL string
	cypCred string
	timeout string
}

type Client struct {
	BaseURL    *url.URL
	CypCred    string
	HTTPClient *http.Client
}

// registerRequest is the registry's own wire vocabulary; field names and the
// password duplication are byte-compatibility requirements and must not be
// "cleaned up".
type registerRequest struct {
	FirstName         string `json:"first_name"`
	MiddleName        string `json:"middle_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	DOB               string `json:"dob"`
	Password          string `json:"password"`
	ConfirmPassword   string `json:"c_password"`
	Address           string `json:"address"`
	Gender            string `json:"gender"`
	ResidenceAddress  string `json:"residence_address"`
	Mobile            string `json:"mobile"`
	Image             string `json:"image"`
	CountryCode       string `json:"country_code"`
	Country           string `json:"country"`
	Nationality       string `json:"nationality"`
	DeviceToken       string `json:"device_token"`
	IsCraftProfileReq int    `json:"isCraftProfileReq"`
}

type registryUser struct {
	UserID json.Number `json:"user_id"`
}

type registerResponse struct {
	Data registryUser `json:"data"`
}

// RegisterResult is the created-identity payload. GlobalUserID is the
// cross-system join key the registry assigned.
type RegisterResult struct {
	GlobalUserID string
	Raw          json.RawMessage
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type countryEntry struct {
	CountryName string `json:"country_name"`
}

type countryListResponse struct {
	Data []countryEntry `json:"data"`
}
