// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/commons"
	"craftcv-server/crypto"
	"craftcv-server/phoneverify"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// pendingRegistrations holds in-progress signups keyed by an opaque handle.
// Nothing touches the database until the final verification step; abandoned
// registrations simply expire.
var pendingRegistrations = gocache.New(30*time.Minute, 10*time.Minute)

type pendingRegistration struct {
	ID           string
	Gate         *phoneverify.Gate
	PasswordHash string
	Password     string
	// Claim is kept here after the code step succeeds so a verify retry
	// after a transient finalize failure does not need a new challenge.
	Claim *phoneverify.Claim
}

func newPendingRegistration() (*pendingRegistration, error) {
	id, err := crypto.GenerateRandomString("pnd_", 16, "hex")
	if err != nil {
		return nil, err
	}
	pending := &pendingRegistration{
		ID:   id,
		Gate: phoneverify.NewGate(newChallenger()),
	}
	pendingRegistrations.SetDefault(id, pending)
	return pending, nil
}

func getPendingRegistration(id string) (*pendingRegistration, error) {
	if id == "" {
		return nil, fmt.Errorf("pending_id is required")
	}
	value, found := pendingRegistrations.Get(id)
	if !found {
		return nil, fmt.Errorf("no pending registration for this handle")
	}
	pending, ok := value.(*pendingRegistration)
	if !ok {
		return nil, fmt.Errorf("no pending registration for this handle")
	}
	return pending, nil
}

func dropPendingRegistration(id string) {
	pendingRegistrations.Delete(id)
}

func newChallenger() phoneverify.Challenger {
	if commons.GetEnv("MOCK_PHONE_VERIFICATION") == "true" {
		return phoneverify.NewMockChallenger()
	}
	return phoneverify.NewFirebaseChallenger()
}
