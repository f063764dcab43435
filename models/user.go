package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents an account
type User struct {
	ID                 string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email              string                      `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash       string                      `json:"-" gorm:"not null"`
	FirstName          string                      `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName           string                      `json:"lastName" gorm:"type:varchar(100);not null"`
	PhoneNumber        string                      `json:"phoneNumber" gorm:"type:varchar(50)"`
	Position           string                      `json:"position" gorm:"type:varchar(100)"`
	Department         string                      `json:"department" gorm:"type:varchar(100)"`
	Country            string                      `json:"country" gorm:"type:varchar(100)"`
	City               string                      `json:"city" gorm:"type:varchar(100)"`
	ProfilePicturePath string                      `json:"profilePicturePath" gorm:"type:varchar(500)"`
	Skills             datatypes.JSONSlice[string] `json:"skills"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

// BeforeCreate assigns the id and normalizes the email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the canonical form used for lookups and the unique index
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
