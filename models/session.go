// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is the server-side record behind the bearer tokens issued at login
// and after a finalized registration. The jwt's sid claim points at the row;
// deleting the row (logout, password reset) invalidates the token.
type Session struct {
	ID         uint    `gorm:"primaryKey"`
	Token      string  `gorm:"not null;uniqueIndex"`
	IPAddress  *string `gorm:"default:null"`
	UserAgent  *string `gorm:"default:null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	UserID     uint
	User       User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func init() {
	AllModels = append(AllModels, &Session{})
}
