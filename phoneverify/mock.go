// SPDX-License-Identifier: GPL-3.0-only

package phoneverify

import (
	"context"
	"craftcv-server/commons"
	"fmt"
)

// MockChallenger accepts a single fixed code for every challenge. Used in
// development and tests where no SMS provider is reachable.
type MockChallenger struct {
	Code string
}

func NewMockChallenger() *MockChallenger {
	return &MockChallenger{Code: commons.GetEnv("MOCK_OTP_CODE", "123456")}
}

func (m *MockChallenger) Verify(ctx context.Context, number string) (Confirmation, error) {
	commons.Logger.Warnf("Mock phone verification enabled, accepting code %s for %s", m.Code, number)
	return &mockConfirmation{code: m.Code}, nil
}

type mockConfirmation struct {
	code string
}

func (m *mockConfirmation) Confirm(ctx context.Context, code string) error {
	if code != m.code {
		return fmt.Errorf("code does not match")
	}
	return nil
}
