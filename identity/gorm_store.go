// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"craftcv-server/commons"
	"craftcv-server/models"
	"errors"

	"gorm.io/gorm"
)

// GormStore is the gorm-backed LocalStore over models.User.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{DB: conn}
}

func (s *GormStore) CreateIdentity(ctx context.Context, rec *models.User) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) UpsertByGlobalUserID(ctx context.Context, globalUserID string, rec models.User) (*models.User, error) {
	existing := models.User{}
	err := s.DB.WithContext(ctx).Where("global_user_id = ?", globalUserID).First(&existing).Error
	if err == nil {
		commons.Logger.Debugf("Local record already holds global user %s, updating in place", globalUserID)
		changes := profileColumns(rec)
		if err := s.DB.WithContext(ctx).Model(&existing).Updates(changes).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec.GlobalUserID = &globalUserID
	rec.EmailVerified = false
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) UpdateByEmail(ctx context.Context, email string, changes map[string]any) (*models.User, error) {
	user := models.User{}
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&user).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func profileColumns(rec models.User) map[string]any {
	return map[string]any{
		"username":            rec.Username,
		"email":               rec.Email,
		"password":            rec.Password,
		"first_name":          rec.FirstName,
		"middle_name":         rec.MiddleName,
		"last_name":           rec.LastName,
		"gender":              rec.Gender,
		"dob":                 rec.DOB,
		"nationality":         rec.Nationality,
		"country_residence":   rec.CountryResidence,
		"city_residence":      rec.CityResidence,
		"residential_address": rec.ResidentialAddress,
		"locale":              rec.Locale,
		"mobile_number":       rec.MobileNumber,
		"mobile_country_code": rec.MobileCountryCode,
	}
}
