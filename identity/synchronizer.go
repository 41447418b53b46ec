// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"craftcv-server/commons"
	"craftcv-server/models"
	"craftcv-server/phoneverify"
	"craftcv-server/registry"
	"errors"
	"fmt"
)

// RegistryClient is the slice of the registry adapter the synchronizer uses.
type RegistryClient interface {
	Register(ctx context.Context, profile models.IdentityProfile, password string) (*registry.RegisterResult, error)
	UpdateProfile(ctx context.Context, globalUserID string, profile models.IdentityProfile) error
}

// Notifier dispatches the re-verification notice when an identity's email
// address changes.
type Notifier interface {
	EmailChanged(email, name string)
}

// Reconciler receives partial-sync reports for out-of-band reconciliation.
type Reconciler interface {
	PublishPartialSync(ctx context.Context, globalUserID, email, reason string)
}

// Synchronizer coordinates every write that must land in both the registry
// and the local store. The registry always goes first: it assigns the
// durable cross-system key on create, and it cannot compensate (no delete),
// so the local side is the one that has to absorb replays and failures.
type Synchronizer struct {
	Registry   RegistryClient
	Store      LocalStore
	Audit      Auditor
	Notifier   Notifier
	Reconciler Reconciler
}

// FinalizeInput is the finalize-registration command produced once the phone
// verification gate reaches Verified.
type FinalizeInput struct {
	Profile      models.IdentityProfile
	Password     string
	PasswordHash string
	Claim        *phoneverify.Claim
}

// Finalize runs the create path: registry register first, then an idempotent
// local upsert keyed by the registry-assigned global user id. A registry
// rejection aborts with no local write. A local failure after registry
// success surfaces as PartialSyncError and is reported for reconciliation.
func (s *Synchronizer) Finalize(ctx context.Context, in FinalizeInput) (*models.User, error) {
	if in.Claim == nil {
		return nil, &phoneverify.NoActiveChallengeError{}
	}

	profile := in.Profile
	// The challenged number is the only one finalize accepts.
	profile.MobileNumber = in.Claim.NationalNumber
	profile.MobileCountryCode = in.Claim.CallingCode

	result, err := s.Registry.Register(ctx, profile, in.Password)
	if err != nil {
		s.record(ctx, models.Register, models.Failed, "", profile.Email, err.Error())
		return nil, fmt.Errorf("finalize registration for %s: %w", profile.Email, err)
	}

	rec := models.User{
		Username:           profile.Username,
		Email:              profile.Email,
		Password:           in.PasswordHash,
		FirstName:          profile.FirstName,
		MiddleName:         profile.MiddleName,
		LastName:           profile.LastName,
		Gender:             profile.Gender,
		DOB:                profile.DOB,
		Nationality:        profile.Nationality,
		CountryResidence:   profile.CountryResidence,
		CityResidence:      profile.CityResidence,
		ResidentialAddress: profile.ResidentialAddress,
		Locale:             profile.Locale,
		MobileNumber:       profile.MobileNumber,
		MobileCountryCode:  profile.MobileCountryCode,
		Provider:           "email",
	}

	user, err := s.Store.UpsertByGlobalUserID(ctx, result.GlobalUserID, rec)
	if err != nil {
		// The registry identity now exists without a local record. Not
		// fatal to the registry side, but it must be observable.
		partial := &PartialSyncError{GlobalUserID: result.GlobalUserID, Email: profile.Email, Err: err}
		commons.Logger.Errorf("Partial identity sync: global_user_id=%s email=%s: %v",
			result.GlobalUserID, profile.Email, err)
		s.record(ctx, models.Register, models.Partial, result.GlobalUserID, profile.Email, err.Error())
		if s.Reconciler != nil {
			s.Reconciler.PublishPartialSync(ctx, result.GlobalUserID, profile.Email, err.Error())
		}
		return nil, partial
	}

	s.record(ctx, models.Register, models.Synced, result.GlobalUserID, profile.Email, "")
	commons.Logger.Infof("Identity finalized: global_user_id=%s local_id=%d", result.GlobalUserID, user.ID)
	return user, nil
}

// Update runs the update path: registry first, local only after registry
// confirmation. There is no upsert safety net for updates, so any registry
// failure aborts before the local write and the stores stay aligned.
func (s *Synchronizer) Update(ctx context.Context, user models.User, changes models.IdentityProfile) (*models.User, error) {
	if user.GlobalUserID == nil || *user.GlobalUserID == "" {
		return nil, fmt.Errorf("identity %s has no registry reference, cannot synchronize update", user.Email)
	}
	globalUserID := *user.GlobalUserID

	emailChanging := changes.Email != "" && changes.Email != user.Email
	if emailChanging {
		// The new address is unproven: drop the verified flag and notify
		// before it is accepted anywhere.
		if _, err := s.Store.UpdateByEmail(ctx, user.Email, map[string]any{"email_verified": false}); err != nil {
			return nil, fmt.Errorf("reset email verification for %s: %w", user.Email, err)
		}
		if s.Notifier != nil {
			s.Notifier.EmailChanged(changes.Email, changes.FirstName)
		}
	}

	if err := s.Registry.UpdateProfile(ctx, globalUserID, changes); err != nil {
		s.record(ctx, models.ProfileUpdate, models.Failed, globalUserID, user.Email, err.Error())
		var forbidden *registry.ForbiddenError
		if errors.As(err, &forbidden) {
			commons.Logger.Errorf("Registry credential rejected while updating %s, check REGISTRY_CYP_CRED", globalUserID)
		}
		return nil, fmt.Errorf("update registry profile %s: %w", globalUserID, err)
	}

	columns := map[string]any{
		"first_name":          changes.FirstName,
		"middle_name":         changes.MiddleName,
		"last_name":           changes.LastName,
		"gender":              changes.Gender,
		"nationality":         changes.Nationality,
		"country_residence":   changes.CountryResidence,
		"city_residence":      changes.CityResidence,
		"residential_address": changes.ResidentialAddress,
	}
	if changes.DOB != "" {
		columns["dob"] = changes.DOB
	}
	if emailChanging {
		columns["email"] = changes.Email
		columns["email_verified"] = false
	}

	updated, err := s.Store.UpdateByEmail(ctx, user.Email, columns)
	if err != nil {
		// Registry took the update, local did not: same observable
		// inconsistency as the create path.
		partial := &PartialSyncError{GlobalUserID: globalUserID, Email: user.Email, Err: err}
		commons.Logger.Errorf("Partial identity sync on update: global_user_id=%s email=%s: %v",
			globalUserID, user.Email, err)
		s.record(ctx, models.ProfileUpdate, models.Partial, globalUserID, user.Email, err.Error())
		if s.Reconciler != nil {
			s.Reconciler.PublishPartialSync(ctx, globalUserID, user.Email, err.Error())
		}
		return nil, partial
	}

	s.record(ctx, models.ProfileUpdate, models.Synced, globalUserID, updated.Email, "")
	return updated, nil
}

func (s *Synchronizer) record(ctx context.Context, category models.SyncCategory, status models.SyncStatus, globalUserID, email, description string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, category, status, globalUserID, email, description)
}
