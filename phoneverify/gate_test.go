// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import (
	"context"
	"craftcv-server/models"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChallenger issues a distinct code per dispatch so tests can tell a
// superseded challenge from the live one.
type stubChallenger struct {
	dispatches int
	failNext   bool
}

func (s *stubChallenger) Verify(ctx context.Context, number string) (Confirmation, error) {
	if s.failNext {
		return nil, fmt.Errorf("provider unreachable")
	}
	s.dispatches++
	return &stubConfirmation{code: fmt.Sprintf("code-%d", s.dispatches)}, nil
}

type stubConfirmation struct {
	code string
}

func (s *stubConfirmation) Confirm(ctx context.Context, code string) error {
	if code != s.code {
		return fmt.Errorf("wrong code")
	}
	return nil
}

func testProfile() models.IdentityProfile {
	return models.IdentityProfile{
		FirstName:          "Jane",
		LastName:           "Doe",
		Gender:             "Female",
		DOB:                "1990-02-03",
		Nationality:        "Ghana",
		CountryResidence:   "Ghana",
		CityResidence:      "Accra",
		ResidentialAddress: "12 Ring Road",
		Email:              "jane@example.com",
		Username:           "jane.doe.4f2a",
	}
}

func TestGateHappyPath(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&stubChallenger{})

	require.NoError(t, gate.SubmitProfile(testProfile()))
	assert.Equal(t, AwaitingPhone, gate.State())

	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))
	assert.Equal(t, AwaitingCode, gate.State())

	require.NoError(t, gate.SubmitCode(ctx, "code-1"))
	assert.Equal(t, Verified, gate.State())

	claim, err := gate.TakeClaim()
	require.NoError(t, err)
	assert.Equal(t, "1", claim.CallingCode)
	assert.Equal(t, "4155552671", claim.NationalNumber)
	assert.Equal(t, "+14155552671", claim.E164())
	assert.False(t, claim.VerifiedAt.IsZero())
}

func TestGateProfileRequiredFields(t *testing.T) {
	gate := NewGate(&stubChallenger{})

	profile := testProfile()
	profile.Email = ""
	profile.DOB = ""
	err := gate.SubmitProfile(profile)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "email")
	assert.Contains(t, validation.Fields, "dob")
	assert.NotContains(t, validation.Fields, "fname")
	assert.Equal(t, CollectingProfile, gate.State())
}

func TestGateProfileRejectsMalformedDOB(t *testing.T) {
	gate := NewGate(&stubChallenger{})

	profile := testProfile()
	profile.DOB = "03/02/1990"
	err := gate.SubmitProfile(profile)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "dob")
	assert.Equal(t, CollectingProfile, gate.State())
}

func TestGateDefaultsLocale(t *testing.T) {
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))
	assert.Equal(t, "en-US", gate.Profile().Locale)
}

func TestGatePhoneBeforeProfile(t *testing.T) {
	gate := NewGate(&stubChallenger{})

	err := gate.SubmitPhone(context.Background(), "1", "4155552671")
	var dispatch *ChallengeDispatchError
	require.ErrorAs(t, err, &dispatch)
}

func TestGateInvalidNumber(t *testing.T) {
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))

	err := gate.SubmitPhone(context.Background(), "1", "123")
	var dispatch *ChallengeDispatchError
	require.ErrorAs(t, err, &dispatch)
	assert.Equal(t, AwaitingPhone, gate.State())
}

func TestGateDispatchFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	challenger := &stubChallenger{failNext: true}
	gate := NewGate(challenger)
	require.NoError(t, gate.SubmitProfile(testProfile()))

	err := gate.SubmitPhone(ctx, "1", "4155552671")
	var dispatch *ChallengeDispatchError
	require.ErrorAs(t, err, &dispatch)
	assert.Equal(t, AwaitingPhone, gate.State())

	challenger.failNext = false
	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))
	assert.Equal(t, AwaitingCode, gate.State())
}

func TestGateCodeWithoutChallengeResets(t *testing.T) {
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))

	err := gate.SubmitCode(context.Background(), "code-1")
	var noChallenge *NoActiveChallengeError
	require.ErrorAs(t, err, &noChallenge)
	assert.Equal(t, CollectingProfile, gate.State())
	assert.Equal(t, "", gate.Profile().Email)
}

func TestGateWrongCodeKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))
	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))

	err := gate.SubmitCode(ctx, "bogus")
	var rejected *CodeRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, AwaitingCode, gate.State())

	require.NoError(t, gate.SubmitCode(ctx, "code-1"))
	assert.Equal(t, Verified, gate.State())
}

func TestGateSupersedeInvalidatesOldCode(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))
	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))
	require.NoError(t, gate.SubmitPhone(ctx, "44", "7911123456"))

	err := gate.SubmitCode(ctx, "code-1")
	var rejected *CodeRejectedError
	require.ErrorAs(t, err, &rejected)

	require.NoError(t, gate.SubmitCode(ctx, "code-2"))
	claim, err := gate.TakeClaim()
	require.NoError(t, err)
	assert.Equal(t, "44", claim.CallingCode)
	assert.Equal(t, "7911123456", claim.NationalNumber)
}

func TestGateClaimIsSingleUse(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))
	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))
	require.NoError(t, gate.SubmitCode(ctx, "code-1"))

	_, err := gate.TakeClaim()
	require.NoError(t, err)

	_, err = gate.TakeClaim()
	var noChallenge *NoActiveChallengeError
	require.ErrorAs(t, err, &noChallenge)
}

func TestGateRestart(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&stubChallenger{})
	require.NoError(t, gate.SubmitProfile(testProfile()))
	require.NoError(t, gate.SubmitPhone(ctx, "1", "4155552671"))

	gate.Restart()
	assert.Equal(t, CollectingProfile, gate.State())
	require.NoError(t, gate.SubmitProfile(testProfile()))
}

func TestMockChallengerAcceptsConfiguredCode(t *testing.T) {
	t.Setenv("MOCK_OTP_CODE", "999000")
	ctx := context.Background()

	confirmation, err := NewMockChallenger().Verify(ctx, "+14155552671")
	require.NoError(t, err)
	assert.Error(t, confirmation.Confirm(ctx, "123456"))
	assert.NoError(t, confirmation.Confirm(ctx, "999000"))
}
