// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

var AllModels []any

// User is the local half of an identity. GlobalUserID is the identifier the
// registry assigned when the identity was created there; it is the only field
// both systems share and at most one local row may carry a given value.
// Free-text profile fields use "" as the unset sentinel, never NULL.
type User struct {
	ID                 uint    `gorm:"primaryKey"`
	Username           string  `gorm:"size:255;not null;uniqueIndex"`
	Email              string  `gorm:"size:255;not null;uniqueIndex"`
	Password           string  `gorm:"not null"`
	FirstName          string  `gorm:"size:255;not null;default:''"`
	MiddleName         string  `gorm:"size:255;not null;default:''"`
	LastName           string  `gorm:"size:255;not null;default:''"`
	Gender             string  `gorm:"size:255;not null;default:''"`
	DOB                string  `gorm:"size:255;not null;default:''"`
	Nationality        string  `gorm:"size:255;not null;default:''"`
	CountryResidence   string  `gorm:"size:255;not null;default:''"`
	CityResidence      string  `gorm:"size:255;not null;default:''"`
	ResidentialAddress string  `gorm:"size:255;not null;default:''"`
	Locale             string  `gorm:"size:255;not null;default:'en-US'"`
	Picture            *string `gorm:"default:null"`
	MobileNumber       string  `gorm:"size:255;not null;default:''"`
	MobileCountryCode  string  `gorm:"size:255;not null;default:''"`
	EmailVerified      bool    `gorm:"not null;default:false"`
	Provider           string  `gorm:"size:255;not null;default:'email'"`
	GlobalUserID       *string `gorm:"size:255;default:null;uniqueIndex"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &User{})
}
