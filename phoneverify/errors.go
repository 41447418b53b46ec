// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import (
	"fmt"
	"strings"
)

// ValidationError is bad client input on the profile step; correctable in
// place.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid required fields: %s", strings.Join(e.Fields, ", "))
}

// ChallengeDispatchError means the third-party challenge could not be issued
// (unreachable provider or rejected number format). The same step may be
// resubmitted.
type ChallengeDispatchError struct {
	Err error
}

func (e *ChallengeDispatchError) Error() string {
	return fmt.Sprintf("could not dispatch phone challenge: %v", e.Err)
}

func (e *ChallengeDispatchError) Unwrap() error { return e.Err }

// CodeRejectedError is a wrong or expired one-time code. The gate stays in
// AwaitingCode and the code may be resubmitted.
type CodeRejectedError struct {
	Err error
}

func (e *CodeRejectedError) Error() string {
	return fmt.Sprintf("one-time code rejected: %v", e.Err)
}

func (e *CodeRejectedError) Unwrap() error { return e.Err }

// NoActiveChallengeError is a code submission with no outstanding challenge.
// This is a replay or programming fault; the flow must restart from the
// profile step.
type NoActiveChallengeError struct{}

func (e *NoActiveChallengeError) Error() string {
	return "no active phone challenge for this registration"
}
