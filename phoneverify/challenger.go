// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import "context"

// Challenger is the third-party phone possession proof capability. Verify
// dispatches a one-time code to an international-format number and returns
// the confirmation handle for that specific challenge.
type Challenger interface {
	Verify(ctx context.Context, number string) (Confirmation, error)
}

// Confirmation is the only accepted entry point for code verification; it is
// bound to the challenge that produced it.
type Confirmation interface {
	Confirm(ctx context.Context, code string) error
}
