// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordReset is a single-use reset token. The external registry's copy of
// the password is replaced before the local hash, so the token is only marked
// used once both sides changed.
type PasswordReset struct {
	ID          uint    `gorm:"primaryKey"`
	Token       string  `gorm:"size:255;not null;uniqueIndex"`
	IsUsed      bool    `gorm:"not null;default:false"`
	RequestedIP *string `gorm:"default:null"`
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	UserID      uint
	User        User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func init() {
	AllModels = append(AllModels, &PasswordReset{})
}
