// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import (
	"context"
	"craftcv-server/commons"
	"craftcv-server/models"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"
)

type State int

const (
	CollectingProfile State = iota
	AwaitingPhone
	AwaitingCode
	Verified
)

func (s State) String() string {
	switch s {
	case CollectingProfile:
		return "COLLECTING_PROFILE"
	case AwaitingPhone:
		return "AWAITING_PHONE"
	case AwaitingCode:
		return "AWAITING_CODE"
	case Verified:
		return "VERIFIED"
	}
	return "UNKNOWN"
}

// Claim is the proof that a one-time-code challenge succeeded for a specific
// phone number. It is single-use: TakeClaim hands it out exactly once.
type Claim struct {
	CallingCode    string
	NationalNumber string
	VerifiedAt     time.Time
}

func (c *Claim) E164() string {
	return "+" + c.CallingCode + c.NationalNumber
}

// Gate drives the client-visible registration steps: profile entry, phone
// entry, code entry. At most one third-party challenge is outstanding at a
// time; a new SubmitPhone supersedes the previous challenge.
type Gate struct {
	mu         sync.Mutex
	challenger Challenger
	state      State
	profile    models.IdentityProfile
	challenge  Confirmation
	calling    string
	national   string
	claim      *Claim
}

func NewGate(challenger Challenger) *Gate {
	return &Gate{challenger: challenger, state: CollectingProfile}
}

// Challenger exposes the provider backing this gate so transport code can
// attach provider-specific request context before dispatching.
func (g *Gate) Challenger() Challenger {
	return g.challenger
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Profile() models.IdentityProfile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.profile
}

// SubmitProfile validates required-ness only; cross-field business rules are
// not the gate's concern.
func (g *Gate) SubmitProfile(profile models.IdentityProfile) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != CollectingProfile {
		return &ValidationError{Fields: []string{"registration already past the profile step, restart to change it"}}
	}

	required := [][2]string{
		{"fname", profile.FirstName},
		{"email", profile.Email},
		{"gender", profile.Gender},
		{"dob", profile.DOB},
		{"nationality", profile.Nationality},
		{"countryresidence", profile.CountryResidence},
		{"cityresidence", profile.CityResidence},
		{"residentaladdress", profile.ResidentialAddress},
	}
	var missing []string
	for _, field := range required {
		if field[1] == "" {
			missing = append(missing, field[0])
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	// A malformed date would otherwise reach the registry as an empty dob
	// while the raw string lands in the local record.
	if _, err := time.Parse("2006-01-02", profile.DOB); err != nil {
		return &ValidationError{Fields: []string{"dob"}}
	}
	if profile.Locale == "" {
		profile.Locale = "en-US"
	}

	g.profile = profile
	g.state = AwaitingPhone
	commons.Logger.Debugf("Registration profile accepted for %s", profile.Email)
	return nil
}

// SubmitPhone composes the international number, dispatches the out-of-band
// challenge and moves to AwaitingCode. Calling it again while a challenge is
// outstanding supersedes that challenge; codes issued against the old one
// will no longer confirm.
func (g *Gate) SubmitPhone(ctx context.Context, callingCode, nationalNumber string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != AwaitingPhone && g.state != AwaitingCode {
		return &ChallengeDispatchError{Err: fmt.Errorf("phone step not reachable from state %s", g.state)}
	}

	parsed, err := phonenumbers.Parse("+"+callingCode+nationalNumber, "")
	if err != nil {
		return &ChallengeDispatchError{Err: err}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return &ChallengeDispatchError{Err: fmt.Errorf("invalid phone number")}
	}
	e164 := phonenumbers.Format(parsed, phonenumbers.E164)

	confirmation, err := g.challenger.Verify(ctx, e164)
	if err != nil {
		commons.Logger.Error("Phone challenge dispatch failed:", err)
		return &ChallengeDispatchError{Err: err}
	}

	g.challenge = confirmation
	g.calling = strconv.Itoa(int(parsed.GetCountryCode()))
	g.national = phonenumbers.GetNationalSignificantNumber(parsed)
	g.state = AwaitingCode
	commons.Logger.Debugf("Phone challenge dispatched to %s", e164)
	return nil
}

// SubmitCode confirms the code against the challenge issued by the most
// recent SubmitPhone, never a stale one.
func (g *Gate) SubmitCode(ctx context.Context, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != AwaitingCode || g.challenge == nil {
		g.reset()
		return &NoActiveChallengeError{}
	}

	if err := g.challenge.Confirm(ctx, code); err != nil {
		commons.Logger.Debug("One-time code rejected")
		return &CodeRejectedError{Err: err}
	}

	g.claim = &Claim{
		CallingCode:    g.calling,
		NationalNumber: g.national,
		VerifiedAt:     time.Now(),
	}
	g.challenge = nil
	g.state = Verified
	commons.Logger.Debugf("Phone possession verified for +%s%s", g.calling, g.national)
	return nil
}

// TakeClaim hands out the verified-phone claim exactly once. A second take,
// or a take before verification, fails.
func (g *Gate) TakeClaim() (*Claim, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Verified || g.claim == nil {
		return nil, &NoActiveChallengeError{}
	}
	claim := g.claim
	g.claim = nil
	return claim, nil
}

// Restart returns the gate to CollectingProfile from any state and discards
// the outstanding challenge and claim.
func (g *Gate) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

func (g *Gate) reset() {
	g.state = CollectingProfile
	g.profile = models.IdentityProfile{}
	g.challenge = nil
	g.calling = ""
	g.national = ""
	g.claim = nil
}
