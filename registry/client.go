// SPDX-License-Identifier: GPL-3.0-only

package registry

import (
	"bytes"
	"context"
	"craftcv-server/commons"
	"craftcv-server/models"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func NewClient(c Config) (*Client, error) {
	if c.baseURL == "" {
		c.baseURL = commons.GetEnv("REGISTRY_API_URL", "http://localhost:9400")
	}
	if c.cypCred == "" {
		c.cypCred = commons.GetEnv("REGISTRY_CYP_CRED")
	}
	if c.timeout == "" {
		c.timeout = commons.GetEnv("REGISTRY_TIMEOUT", "10")
	}

	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		commons.Logger.Error("Failed to parse registry API base URL:", err)
		return nil, err
	}
	seconds, err := strconv.Atoi(c.timeout)
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	commons.Logger.Debugf("Registry API client initialized for %s", c.baseURL)
	return &Client{
		BaseURL:    parsedURL,
		CypCred:    c.cypCred,
		HTTPClient: &http.Client{Timeout: time.Duration(seconds) * time.Second},
	}, nil
}

// FormatDateDMY reformats a YYYY-MM-DD date into the registry's D/M/YYYY
// wire form. The registry does not accept zero-padded day or month values.
func FormatDateDMY(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// Register creates the compliance identity. The registry assigns the global
// user id returned here; nothing may be written locally before this call
// succeeds.
func (c *Client) Register(ctx context.Context, profile models.IdentityProfile, password string) (*RegisterResult, error) {
	commons.Logger.Debugf("Registering identity in registry: %s", profile.Email)
	payload := registerRequest{
		FirstName:         profile.FirstName,
		MiddleName:        profile.MiddleName,
		LastName:          profile.LastName,
		Email:             profile.Email,
		DOB:               FormatDateDMY(profile.DOB),
		Password:          password,
		ConfirmPassword:   password,
		Address:           profile.CityResidence,
		Gender:            profile.Gender,
		ResidenceAddress:  profile.ResidentialAddress,
		Mobile:            profile.MobileNumber,
		Image:             "",
		CountryCode:       profile.MobileCountryCode,
		Country:           profile.CountryResidence,
		Nationality:       profile.Nationality,
		DeviceToken:       "xyz",
		IsCraftProfileReq: 1,
	}

	body, err := c.postJSON(ctx, "register", "/register", payload)
	if err != nil {
		return nil, err
	}

	parsed := registerResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		commons.Logger.Error("Failed to decode registry register response:", err)
		return nil, &UnavailableError{Op: "register", Err: err}
	}
	if parsed.Data.UserID.String() == "" {
		return nil, &UnavailableError{Op: "register", Err: fmt.Errorf("registry response missing user_id")}
	}
	commons.Logger.Infof("Registry identity created: %s", parsed.Data.UserID.String())
	return &RegisterResult{
		GlobalUserID: parsed.Data.UserID.String(),
		Raw:          body,
	}, nil
}

// Login is a pass-through credential check against the registry.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	commons.Logger.Debugf("Registry login for %s", email)
	return c.postJSON(ctx, "login", "/auth-login", credentialsRequest{Email: email, Password: password})
}

// ResetPassword replaces the registry-side password for an identity.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	commons.Logger.Debugf("Registry password reset for %s", email)
	_, err := c.postJSON(ctx, "reset-password", "/reset-password", credentialsRequest{Email: email, Password: newPassword})
	return err
}

// UpdateProfile pushes mutable profile fields to the registry. The call is a
// multipart form carrying the shared service credential; dob is omitted
// entirely when unset, which the registry treats as "leave unchanged".
func (c *Client) UpdateProfile(ctx context.Context, globalUserID string, profile models.IdentityProfile) error {
	commons.Logger.Debugf("Registry profile update for global user %s", globalUserID)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"cyp_cred", c.CypCred},
		{"user_id", globalUserID},
		{"first_name", profile.FirstName},
		{"middle_name", profile.MiddleName},
		{"last_name", profile.LastName},
		{"email", profile.Email},
		{"residence_address", profile.ResidentialAddress},
		{"address", profile.CityResidence},
		{"country", profile.CountryResidence},
		{"nationality", profile.Nationality},
		{"gender", profile.Gender},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return &UnavailableError{Op: "update-profile", Err: err}
		}
	}
	if profile.DOB != "" {
		if err := form.WriteField("dob", FormatDateDMY(profile.DOB)); err != nil {
			return &UnavailableError{Op: "update-profile", Err: err}
		}
	}
	if err := form.Close(); err != nil {
		return &UnavailableError{Op: "update-profile", Err: err}
	}

	rel := &url.URL{Path: "/update-by-cyp"}
	u := c.BaseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return &UnavailableError{Op: "update-profile", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		commons.Logger.Error("HTTP request to update registry profile failed:", err)
		return &UnavailableError{Op: "update-profile", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		commons.Logger.Errorf("Registry denied profile update for %s: 403", globalUserID)
		return &ForbiddenError{Op: "update-profile"}
	}
	if err := checkStatus("update-profile", resp); err != nil {
		return err
	}
	commons.Logger.Infof("Registry profile updated for global user %s", globalUserID)
	return nil
}

// CountryList fetches the registry's country names for selection inputs.
func (c *Client) CountryList(ctx context.Context) ([]string, error) {
	commons.Logger.Debug("Fetching registry country list")
	rel := &url.URL{Path: "/get-country-list"}
	u := c.BaseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UnavailableError{Op: "country-list", Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		commons.Logger.Error("HTTP request to fetch country list failed:", err)
		return nil, &UnavailableError{Op: "country-list", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus("country-list", resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Op: "country-list", Err: err}
	}
	parsed := countryListResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &UnavailableError{Op: "country-list", Err: err}
	}

	seen := map[string]bool{}
	countries := make([]string, 0, len(parsed.Data))
	for _, entry := range parsed.Data {
		name := strings.TrimSpace(entry.CountryName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		countries = append(countries, name)
	}
	return countries, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}

	rel := &url.URL{Path: path}
	u := c.BaseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		commons.Logger.Errorf("HTTP request for registry %s failed: %v", op, err)
		return nil, &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}
	return body, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		commons.Logger.Errorf("Registry %s rejected: %s", op, resp.Status)
		return &RejectedError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	// 5xx, plus anything else outside 2xx/4xx (an unfollowed redirect from a
	// misconfigured proxy, say), is worth retrying.
	commons.Logger.Errorf("Registry %s failed: %s", op, resp.Status)
	return &UnavailableError{Op: op, Err: fmt.Errorf("%s", resp.Status)}
}
