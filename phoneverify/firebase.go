// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import (
	"bytes"
	"context"
	"craftcv-server/commons"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseChallenger dispatches one-time SMS codes through the Identity
// Toolkit phone-auth REST endpoints. Each Verify call opens a fresh
// sessionInfo; confirming a code against an older session fails upstream,
// which is exactly the supersede behavior the gate relies on.
type FirebaseChallenger struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	recaptchaToken string
}

func NewFirebaseChallenger() *FirebaseChallenger {
	return &FirebaseChallenger{
		APIKey:  commons.GetEnv("FIREBASE_API_KEY"),
		BaseURL: commons.GetEnv("FIREBASE_IDENTITY_URL", identityToolkitURL),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetRecaptchaToken attaches the client-side abuse-check token to the next
// dispatched challenge. The toolkit rejects sendVerificationCode without one
// on web clients.
func (f *FirebaseChallenger) SetRecaptchaToken(token string) {
	f.recaptchaToken = token
}

func (f *FirebaseChallenger) Verify(ctx context.Context, number string) (Confirmation, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY environment variable is not set")
	}

	payload := map[string]string{"phoneNumber": number}
	if f.recaptchaToken != "" {
		payload["recaptchaToken"] = f.recaptchaToken
	}

	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	if err := f.post(ctx, "accounts:sendVerificationCode", payload, &resp); err != nil {
		return nil, err
	}
	if resp.SessionInfo == "" {
		return nil, fmt.Errorf("provider returned no session for the challenge")
	}

	return &firebaseConfirmation{challenger: f, sessionInfo: resp.SessionInfo}, nil
}

type firebaseConfirmation struct {
	challenger  *FirebaseChallenger
	sessionInfo string
}

func (c *firebaseConfirmation) Confirm(ctx context.Context, code string) error {
	payload := map[string]string{
		"sessionInfo": c.sessionInfo,
		"code":        code,
	}
	var resp struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	return c.challenger.post(ctx, "accounts:signInWithPhoneNumber", payload, &resp)
}

func (f *FirebaseChallenger) post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s?key=%s", f.BaseURL, action, f.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s failed: %s", action, apiErr.Error.Message)
		}
		return fmt.Errorf("%s failed with status %d", action, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
