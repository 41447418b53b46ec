// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"craftcv-server/commons"
	"craftcv-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auditor records sync outcomes. Failures to record are logged, never
// propagated; the audit trail must not change the result of the operation it
// describes.
type Auditor interface {
	Record(ctx context.Context, category models.SyncCategory, status models.SyncStatus, globalUserID, email, description string)
}

type GormAuditor struct {
	DB *gorm.DB
}

func NewGormAuditor(conn *gorm.DB) *GormAuditor {
	return &GormAuditor{DB: conn}
}

func (a *GormAuditor) Record(ctx context.Context, category models.SyncCategory, status models.SyncStatus, globalUserID, email, description string) {
	event := models.SyncEvent{
		EID:      uuid.New(),
		Category: &category,
		Status:   &status,
	}
	if globalUserID != "" {
		event.GlobalUserID = &globalUserID
	}
	if email != "" {
		event.Email = &email
	}
	if description != "" {
		event.Description = &description
	}
	if err := a.DB.WithContext(ctx).Create(&event).Error; err != nil {
		commons.Logger.Errorf("Failed to record sync event %s/%s: %v", category, status, err)
	}
}
