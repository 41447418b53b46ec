// SPDX-License-Identifier: GPL-3.0-only

package identity

import "fmt"

// PartialSyncError reports a registry-side identity that exists without a
// matching local record (the local write failed after the registry create
// succeeded). It carries both identifiers so an operator can reconcile the
// two stores; it must never be collapsed into a generic failure.
type PartialSyncError struct {
	GlobalUserID string
	Email        string
	Err          error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("identity partially synced: registry holds %s for %s but local write failed: %v",
		e.GlobalUserID, e.Email, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }
