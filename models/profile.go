// SPDX-License-Identifier: GPL-3.0-only

package models

// IdentityProfile is the canonical attribute set collected during
// registration and carried through profile updates. Free-text fields use ""
// for "unset"; the registry and the local store both receive this shape
// through their own adapters.
type IdentityProfile struct {
	FirstName          string `json:"fname"`
	MiddleName         string `json:"mname"`
	LastName           string `json:"lname"`
	Gender             string `json:"gender"`
	DOB                string `json:"dob"`
	Nationality        string `json:"nationality"`
	CountryResidence   string `json:"countryresidence"`
	CityResidence      string `json:"cityresidence"`
	ResidentialAddress string `json:"residentaladdress"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	Locale             string `json:"locale"`
	MobileNumber       string `json:"mobile"`
	MobileCountryCode  string `json:"country_code"`
}
