// SPDX-License-Identifier: GPL-3.0-only

package registry

import (
	"context"
	"craftcv-server/models"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{baseURL: server.URL, cypCred: "svc-secret", timeout: "5"})
	require.NoError(t, err)
	return client
}

func TestFormatDateDMY(t *testing.T) {
	assert.Equal(t, "3/2/1990", FormatDateDMY("1990-02-03"))
	assert.Equal(t, "25/12/2001", FormatDateDMY("2001-12-25"))
	assert.Equal(t, "", FormatDateDMY("03/02/1990"))
	assert.Equal(t, "", FormatDateDMY(""))
}

func TestRegisterWireFormat(t *testing.T) {
	var captured map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user_id":48213}}`))
	}))

	profile := models.IdentityProfile{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "jane@example.com",
		DOB:                "1990-02-03",
		Gender:             "Female",
		Nationality:        "Ghana",
		CountryResidence:   "Ghana",
		CityResidence:      "Accra",
		ResidentialAddress: "12 Ring Road",
		MobileNumber:       "501234567",
		MobileCountryCode:  "233",
	}

	result, err := client.Register(context.Background(), profile, "Sup3r$ecret")
	require.NoError(t, err)
	assert.Equal(t, "48213", result.GlobalUserID)

	assert.Equal(t, "Sup3r$ecret", captured["password"])
	assert.Equal(t, "Sup3r$ecret", captured["c_password"])
	assert.Equal(t, "3/2/1990", captured["dob"])
	assert.Equal(t, "Accra", captured["address"])
	assert.Equal(t, "12 Ring Road", captured["residence_address"])
	assert.Equal(t, "233", captured["country_code"])
	assert.Equal(t, "", captured["image"])
	assert.Equal(t, "xyz", captured["device_token"])
	assert.Equal(t, float64(1), captured["isCraftProfileReq"])
}

func TestRegisterNumericAndStringUserID(t *testing.T) {
	for _, body := range []string{
		`{"data":{"user_id":7}}`,
		`{"data":{"user_id":"7"}}`,
	} {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		result, err := client.Register(context.Background(), models.IdentityProfile{Email: "a@b.c"}, "pw")
		require.NoError(t, err)
		assert.Equal(t, "7", result.GlobalUserID)
	}
}

func TestRegisterServerErrorIsUnavailable(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Register(context.Background(), models.IdentityProfile{Email: "a@b.c"}, "pw")
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "register", unavailable.Op)
}

func TestRegisterClientErrorIsRejected(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"email already taken"}`))
	}))

	_, err := client.Register(context.Background(), models.IdentityProfile{Email: "a@b.c"}, "pw")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.Status)
	assert.Contains(t, rejected.Body, "email already taken")
}

func TestCheckStatusTreatsRedirectAsUnavailable(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusMultipleChoices,
		Status:     "300 Multiple Choices",
		Body:       io.NopCloser(strings.NewReader("")),
	}

	err := checkStatus("register", resp)
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestRegisterMissingUserIDIsUnavailable(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))

	_, err := client.Register(context.Background(), models.IdentityProfile{Email: "a@b.c"}, "pw")
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestRegisterUnreachableIsUnavailable(t *testing.T) {
	client, err := NewClient(Config{baseURL: "http://127.0.0.1:1", cypCred: "x", timeout: "1"})
	require.NoError(t, err)

	_, err = client.Register(context.Background(), models.IdentityProfile{Email: "a@b.c"}, "pw")
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.NotNil(t, errors.Unwrap(unavailable))
}

func TestUpdateProfileMultipart(t *testing.T) {
	var form map[string][]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/update-by-cyp", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = r.MultipartForm.Value
		w.WriteHeader(http.StatusOK)
	}))

	profile := models.IdentityProfile{
		FirstName: "Jane",
		Email:     "jane@example.com",
		DOB:       "1990-02-03",
	}
	require.NoError(t, client.UpdateProfile(context.Background(), "48213", profile))

	assert.Equal(t, []string{"svc-secret"}, form["cyp_cred"])
	assert.Equal(t, []string{"48213"}, form["user_id"])
	assert.Equal(t, []string{"3/2/1990"}, form["dob"])
}

func TestUpdateProfileOmitsEmptyDOB(t *testing.T) {
	var form map[string][]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = r.MultipartForm.Value
	}))

	require.NoError(t, client.UpdateProfile(context.Background(), "48213", models.IdentityProfile{FirstName: "Jane"}))
	_, present := form["dob"]
	assert.False(t, present, "dob must be absent, not empty, when unset")
}

func TestUpdateProfileForbidden(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	err := client.UpdateProfile(context.Background(), "48213", models.IdentityProfile{})
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestCountryListDedup(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/get-country-list", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"country_name":" Ghana "},
			{"country_name":"Ghana"},
			{"country_name":""},
			{"country_name":"Togo"}
		]}`))
	}))

	countries, err := client.CountryList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghana", "Togo"}, countries)
}

func TestResetPasswordRejected(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reset-password", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
	}))

	err := client.ResetPassword(context.Background(), "jane@example.com", "NewPw@123")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
}
