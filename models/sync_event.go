// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncStatus string
type SyncCategory string

const (
	Synced  SyncStatus = "SYNCED"
	Partial SyncStatus = "PARTIAL"
	Failed  SyncStatus = "FAILED"
)

const (
	Register      SyncCategory = "REGISTER"
	ProfileUpdate SyncCategory = "PROFILE_UPDATE"
	PasswordSync  SyncCategory = "PASSWORD_SYNC"
)

// SyncEvent records the outcome of every registry-affecting operation so a
// divergence between the two stores is always observable. PARTIAL rows carry
// both identifiers for manual reconciliation.
type SyncEvent struct {
	ID           uint          `gorm:"primaryKey"`
	EID          uuid.UUID     `gorm:"type:uuid;not null;"`
	Category     *SyncCategory `gorm:"size:255;default:null"`
	Status       *SyncStatus   `gorm:"size:255;default:null"`
	GlobalUserID *string       `gorm:"size:255;default:null;index"`
	Email        *string       `gorm:"size:255;default:null"`
	Description  *string       `gorm:"type:text;default:null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &SyncEvent{})
}
