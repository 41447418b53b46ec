// SPDX-License-Identifier: GPL-3.0-only

package registry

import "fmt"

// UnavailableError covers transport failures, timeouts and 5xx responses.
// The whole operation is safe to retry.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("registry unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RejectedError covers 4xx responses (duplicate email and the like). The
// request is permanently invalid for the given input; do not retry blindly.
type RejectedError struct {
	Op     string
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("registry rejected %s: status %d", e.Op, e.Status)
}

// ForbiddenError is the registry's 403 on credentialed calls. It signals a
// service credential or permission misconfiguration, not bad user input.
type ForbiddenError struct {
	Op string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("registry denied %s: service credential rejected", e.Op)
}
