// SPDX-License-Identifier: GPL-3.0-only

package notifications

import "craftcv-server/commons"

// IdentityNotifier sends identity-lifecycle notices. It satisfies the
// synchronizer's Notifier contract.
type IdentityNotifier struct{}

// EmailChanged dispatches the re-verification notice to a newly entered
// email address. Fire-and-forget: delivery failure is logged by the
// dispatcher and must not fail the profile update.
func (IdentityNotifier) EmailChanged(email, name string) {
	vars := map[string]any{
		"username":          email,
		"product_name":      "CraftCV",
		"verification_link": commons.GetEnv("EMAIL_VERIFICATION_URL", "https://craftcv.app") + "/auth/verify-email",
		"base_url":          commons.GetEnv("BASE_URL", "https://api.craftcv.app"),
	}
	toName := name
	if toName != "" {
		vars["name"] = toName
	}
	go DispatchNotification(Email, SMTP, NotificationData{
		To:        email,
		ToName:    &toName,
		Subject:   "CraftCV Email Address Changed - Verification Required",
		Template:  "reverify",
		Variables: vars,
	})
}

// PasswordResetRequested dispatches the reset link for a password reset
// token.
func PasswordResetRequested(email, name, token string) {
	vars := map[string]any{
		"username":     email,
		"product_name": "CraftCV",
		"reset_link":   commons.GetEnv("PASSWORD_RESET_URL", "https://craftcv.app") + "/auth/reset-password?token=" + token,
		"base_url":     commons.GetEnv("BASE_URL", "https://api.craftcv.app"),
	}
	toName := name
	if toName != "" {
		vars["name"] = toName
	}
	go DispatchNotification(Email, SMTP, NotificationData{
		To:        email,
		ToName:    &toName,
		Subject:   "CraftCV Password Reset Request",
		Template:  "password_reset",
		Variables: vars,
	})
}

// SignupVerification dispatches the initial verification notice after a
// registration is finalized with emailVerified=false.
func SignupVerification(email, name string) {
	vars := map[string]any{
		"username":          email,
		"product_name":      "CraftCV",
		"verification_link": commons.GetEnv("EMAIL_VERIFICATION_URL", "https://craftcv.app") + "/auth/verify-email",
		"base_url":          commons.GetEnv("BASE_URL", "https://api.craftcv.app"),
	}
	toName := name
	if toName != "" {
		vars["name"] = toName
	}
	go DispatchNotification(Email, SMTP, NotificationData{
		To:        email,
		ToName:    &toName,
		Subject:   "Welcome to CraftCV - Verify Your Email",
		Template:  "verification",
		Variables: vars,
	})
}
