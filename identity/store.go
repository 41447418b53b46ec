// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"craftcv-server/models"
)

// LocalStore is the contract the synchronizer needs from the application's
// persistence layer; nothing else about the store is assumed.
type LocalStore interface {
	// CreateIdentity inserts a fresh local record.
	CreateIdentity(ctx context.Context, rec *models.User) error
	// UpsertByGlobalUserID updates the record carrying globalUserID in
	// place, or creates one with emailVerified=false when none exists. This
	// is what makes finalize replays converge on a single record.
	UpsertByGlobalUserID(ctx context.Context, globalUserID string, rec models.User) (*models.User, error)
	// UpdateByEmail applies a partial column set to the record keyed by
	// email.
	UpdateByEmail(ctx context.Context, email string, changes map[string]any) (*models.User, error)
	// FindByEmail returns the record for an email, or nil when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
