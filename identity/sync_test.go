// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"craftcv-server/models"
	"craftcv-server/phoneverify"
	"craftcv-server/registry"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	nextGlobalUserID string
	registerErr      error
	updateErr        error
	registerCalls    int
	updateCalls      int
	lastUpdate       models.IdentityProfile
}

func (f *fakeRegistry) Register(ctx context.Context, profile models.IdentityProfile, password string) (*registry.RegisterResult, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &registry.RegisterResult{GlobalUserID: f.nextGlobalUserID}, nil
}

func (f *fakeRegistry) UpdateProfile(ctx context.Context, globalUserID string, profile models.IdentityProfile) error {
	f.updateCalls++
	f.lastUpdate = profile
	return f.updateErr
}

// fakeStore keeps records in a slice so tests can assert on exactly what was
// written and when.
type fakeStore struct {
	records    []models.User
	nextID     uint
	upsertErr  error
	updateErr  error
	updateLogs []map[string]any
}

func (f *fakeStore) CreateIdentity(ctx context.Context, rec *models.User) error {
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeStore) UpsertByGlobalUserID(ctx context.Context, globalUserID string, rec models.User) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for i := range f.records {
		if f.records[i].GlobalUserID != nil && *f.records[i].GlobalUserID == globalUserID {
			id := f.records[i].ID
			verified := f.records[i].EmailVerified
			rec.ID = id
			rec.GlobalUserID = &globalUserID
			rec.EmailVerified = verified
			f.records[i] = rec
			return &f.records[i], nil
		}
	}
	f.nextID++
	rec.ID = f.nextID
	rec.GlobalUserID = &globalUserID
	rec.EmailVerified = false
	f.records = append(f.records, rec)
	return &f.records[len(f.records)-1], nil
}

func (f *fakeStore) UpdateByEmail(ctx context.Context, email string, changes map[string]any) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateLogs = append(f.updateLogs, changes)
	for i := range f.records {
		if f.records[i].Email != email {
			continue
		}
		applyChanges(&f.records[i], changes)
		return &f.records[i], nil
	}
	return nil, fmt.Errorf("record not found")
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range f.records {
		if f.records[i].Email == email {
			return &f.records[i], nil
		}
	}
	return nil, nil
}

func applyChanges(rec *models.User, changes map[string]any) {
	for column, value := range changes {
		switch column {
		case "email":
			rec.Email = value.(string)
		case "email_verified":
			rec.EmailVerified = value.(bool)
		case "first_name":
			rec.FirstName = value.(string)
		case "middle_name":
			rec.MiddleName = value.(string)
		case "last_name":
			rec.LastName = value.(string)
		case "gender":
			rec.Gender = value.(string)
		case "dob":
			rec.DOB = value.(string)
		case "nationality":
			rec.Nationality = value.(string)
		case "country_residence":
			rec.CountryResidence = value.(string)
		case "city_residence":
			rec.CityResidence = value.(string)
		case "residential_address":
			rec.ResidentialAddress = value.(string)
		}
	}
}

type auditEntry struct {
	category models.SyncCategory
	status   models.SyncStatus
}

type fakeAuditor struct {
	entries []auditEntry
}

func (f *fakeAuditor) Record(ctx context.Context, category models.SyncCategory, status models.SyncStatus, globalUserID, email, description string) {
	f.entries = append(f.entries, auditEntry{category: category, status: status})
}

type fakeNotifier struct {
	emails []string
}

func (f *fakeNotifier) EmailChanged(email, name string) {
	f.emails = append(f.emails, email)
}

type fakeReconciler struct {
	events []string
}

func (f *fakeReconciler) PublishPartialSync(ctx context.Context, globalUserID, email, reason string) {
	f.events = append(f.events, globalUserID)
}

func testSync() (*Synchronizer, *fakeRegistry, *fakeStore, *fakeAuditor, *fakeNotifier, *fakeReconciler) {
	reg := &fakeRegistry{nextGlobalUserID: "48213"}
	store := &fakeStore{}
	audit := &fakeAuditor{}
	notifier := &fakeNotifier{}
	reconciler := &fakeReconciler{}
	sync := &Synchronizer{
		Registry:   reg,
		Store:      store,
		Audit:      audit,
		Notifier:   notifier,
		Reconciler: reconciler,
	}
	return sync, reg, store, audit, notifier, reconciler
}

func testFinalizeInput() FinalizeInput {
	return FinalizeInput{
		Profile: models.IdentityProfile{
			FirstName: "Jane",
			Email:     "jane@example.com",
			Username:  "jane.doe.4f2a",
			Locale:    "en-US",
		},
		Password:     "Sup3r$ecret",
		PasswordHash: "$argon2id$fake",
		Claim: &phoneverify.Claim{
			CallingCode:    "1",
			NationalNumber: "4155552671",
			VerifiedAt:     time.Now(),
		},
	}
}

func TestFinalizeRequiresClaim(t *testing.T) {
	sync, reg, store, _, _, _ := testSync()

	in := testFinalizeInput()
	in.Claim = nil
	_, err := sync.Finalize(context.Background(), in)

	var noChallenge *phoneverify.NoActiveChallengeError
	require.ErrorAs(t, err, &noChallenge)
	assert.Zero(t, reg.registerCalls)
	assert.Empty(t, store.records)
}

func TestFinalizeCreatesLinkedUnverifiedRecord(t *testing.T) {
	sync, _, _, audit, _, _ := testSync()

	user, err := sync.Finalize(context.Background(), testFinalizeInput())
	require.NoError(t, err)

	require.NotNil(t, user.GlobalUserID)
	assert.Equal(t, "48213", *user.GlobalUserID)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, "$argon2id$fake", user.Password)
	assert.Equal(t, "4155552671", user.MobileNumber)
	assert.Equal(t, "1", user.MobileCountryCode)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.Register, audit.entries[0].category)
	assert.Equal(t, models.Synced, audit.entries[0].status)
}

func TestFinalizeClaimNumberOverridesProfile(t *testing.T) {
	sync, _, _, _, _, _ := testSync()

	in := testFinalizeInput()
	in.Profile.MobileNumber = "0000000"
	in.Profile.MobileCountryCode = "99"

	user, err := sync.Finalize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "4155552671", user.MobileNumber)
	assert.Equal(t, "1", user.MobileCountryCode)
}

func TestFinalizeRegistryRejectionWritesNothing(t *testing.T) {
	sync, reg, store, audit, _, _ := testSync()
	reg.registerErr = &registry.RejectedError{Op: "register", Status: 422, Body: "email taken"}

	_, err := sync.Finalize(context.Background(), testFinalizeInput())

	var rejected *registry.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Empty(t, store.records)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.Failed, audit.entries[0].status)
}

func TestFinalizeReplayConvergesOnOneRecord(t *testing.T) {
	sync, _, store, _, _, _ := testSync()
	ctx := context.Background()

	first, err := sync.Finalize(ctx, testFinalizeInput())
	require.NoError(t, err)

	second, err := sync.Finalize(ctx, testFinalizeInput())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.records, 1)
}

func TestFinalizeLocalFailureIsPartialAndReported(t *testing.T) {
	sync, _, store, audit, _, reconciler := testSync()
	store.upsertErr = fmt.Errorf("disk full")

	_, err := sync.Finalize(context.Background(), testFinalizeInput())

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "48213", partial.GlobalUserID)
	assert.Equal(t, "jane@example.com", partial.Email)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.Partial, audit.entries[0].status)
	assert.Equal(t, []string{"48213"}, reconciler.events)
}

func TestFinalizeLocalFailureLeavesRegistryRecord(t *testing.T) {
	sync, reg, store, _, _, _ := testSync()
	store.upsertErr = fmt.Errorf("unique constraint violation")

	_, err := sync.Finalize(context.Background(), testFinalizeInput())

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, reg.registerCalls, "registry-side identity was created and remains")
}

func TestEndToEndRegistration(t *testing.T) {
	ctx := context.Background()
	gate := phoneverify.NewGate(&phoneverify.MockChallenger{Code: "123456"})

	require.NoError(t, gate.SubmitProfile(models.IdentityProfile{
		FirstName:          "Jane",
		LastName:           "Doe",
		Gender:             "Female",
		DOB:                "1990-02-03",
		Nationality:        "United Arab Emirates",
		CountryResidence:   "United Arab Emirates",
		CityResidence:      "Dubai",
		ResidentialAddress: "Apt 4, Marina Walk",
		Email:              "jane@x.com",
		Username:           "jane.4f2a",
	}))
	require.NoError(t, gate.SubmitPhone(ctx, "971", "501234567"))
	require.NoError(t, gate.SubmitCode(ctx, "123456"))

	claim, err := gate.TakeClaim()
	require.NoError(t, err)

	sync, _, store, _, _, _ := testSync()
	user, err := sync.Finalize(ctx, FinalizeInput{
		Profile:      gate.Profile(),
		Password:     "Sup3r$ecret",
		PasswordHash: "$argon2id$fake",
		Claim:        claim,
	})
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.False(t, user.EmailVerified)
	require.NotNil(t, user.GlobalUserID)
	assert.Equal(t, "48213", *user.GlobalUserID)
	assert.Equal(t, "971", user.MobileCountryCode)
	assert.Equal(t, "501234567", user.MobileNumber)
}

func existingUser() models.User {
	globalUserID := "48213"
	return models.User{
		ID:            1,
		Username:      "jane.doe.4f2a",
		Email:         "jane@example.com",
		FirstName:     "Jane",
		EmailVerified: true,
		GlobalUserID:  &globalUserID,
	}
}

func TestUpdateRequiresRegistryLink(t *testing.T) {
	sync, reg, _, _, _, _ := testSync()

	user := existingUser()
	user.GlobalUserID = nil
	_, err := sync.Update(context.Background(), user, models.IdentityProfile{FirstName: "Janet"})
	require.Error(t, err)
	assert.Zero(t, reg.updateCalls)
}

func TestUpdateRegistryFirstFailFast(t *testing.T) {
	sync, reg, store, audit, _, _ := testSync()
	store.records = []models.User{existingUser()}
	reg.updateErr = &registry.UnavailableError{Op: "update-profile", Err: fmt.Errorf("gateway timeout")}

	_, err := sync.Update(context.Background(), existingUser(), models.IdentityProfile{FirstName: "Janet"})

	var unavailable *registry.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Jane", store.records[0].FirstName)
	assert.True(t, store.records[0].EmailVerified)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ProfileUpdate, audit.entries[0].category)
	assert.Equal(t, models.Failed, audit.entries[0].status)
}

func TestUpdateAppliesLocallyAfterRegistry(t *testing.T) {
	sync, reg, store, audit, notifier, _ := testSync()
	store.records = []models.User{existingUser()}

	changes := models.IdentityProfile{
		FirstName:   "Janet",
		Nationality: "Ghana",
	}
	updated, err := sync.Update(context.Background(), existingUser(), changes)
	require.NoError(t, err)

	assert.Equal(t, 1, reg.updateCalls)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Ghana", updated.Nationality)
	assert.True(t, updated.EmailVerified, "email unchanged, verification must survive")
	assert.Empty(t, notifier.emails)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.Synced, audit.entries[0].status)
}

func TestUpdateOmitsUnsetDOB(t *testing.T) {
	sync, _, store, _, _, _ := testSync()
	user := existingUser()
	user.DOB = "1990-02-03"
	store.records = []models.User{user}

	updated, err := sync.Update(context.Background(), user, models.IdentityProfile{FirstName: "Janet"})
	require.NoError(t, err)
	assert.Equal(t, "1990-02-03", updated.DOB)
}

func TestUpdateEmailChangeResetsVerificationFirst(t *testing.T) {
	sync, _, store, _, notifier, _ := testSync()
	store.records = []models.User{existingUser()}

	changes := models.IdentityProfile{FirstName: "Jane", Email: "jane.new@example.com"}
	updated, err := sync.Update(context.Background(), existingUser(), changes)
	require.NoError(t, err)

	assert.Equal(t, "jane.new@example.com", updated.Email)
	assert.False(t, updated.EmailVerified)
	assert.Equal(t, []string{"jane.new@example.com"}, notifier.emails)

	// The verification reset is its own write, issued before anything else.
	require.NotEmpty(t, store.updateLogs)
	first := store.updateLogs[0]
	assert.Len(t, first, 1)
	assert.Equal(t, false, first["email_verified"])
}

func TestUpdateEmailChangeWithRegistryFailureStillResetsVerification(t *testing.T) {
	sync, reg, store, _, notifier, _ := testSync()
	store.records = []models.User{existingUser()}
	reg.updateErr = &registry.UnavailableError{Op: "update-profile", Err: fmt.Errorf("down")}

	_, err := sync.Update(context.Background(), existingUser(), models.IdentityProfile{Email: "jane.new@example.com"})
	require.Error(t, err)

	// The old address keeps the record, but its verified flag is already
	// dropped and the notice is out.
	assert.Equal(t, "jane@example.com", store.records[0].Email)
	assert.False(t, store.records[0].EmailVerified)
	assert.Equal(t, []string{"jane.new@example.com"}, notifier.emails)
}

func TestUpdateLocalFailureIsPartial(t *testing.T) {
	sync, _, store, audit, _, reconciler := testSync()
	store.records = []models.User{existingUser()}
	store.updateErr = fmt.Errorf("disk full")

	_, err := sync.Update(context.Background(), existingUser(), models.IdentityProfile{FirstName: "Janet"})

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "48213", partial.GlobalUserID)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.Partial, audit.entries[0].status)
	assert.Equal(t, []string{"48213"}, reconciler.events)
}
