package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project groups tasks and members
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string        `json:"name" gorm:"type:varchar(200);not null"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'NotStarted'"`
	Color       string        `json:"color" gorm:"type:varchar(20);not null"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	CreatedByID string        `json:"createdById" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the id is empty
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LastActivity is UpdatedAt, or CreatedAt for a project never updated
func (p Project) LastActivity() time.Time {
	if p.UpdatedAt.IsZero() {
		return p.CreatedAt
	}
	return p.UpdatedAt
}

// ProjectMember grants a user a role inside a project
type ProjectMember struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProjectID  string    `json:"projectId" gorm:"type:varchar(36);not null;uniqueIndex:idx_project_member_user"`
	UserID     string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_project_member_user;index"`
	Role       Role      `json:"role" gorm:"type:varchar(20);not null"`
	JoinedAt   time.Time `json:"joinedAt"`
	IsFavorite bool      `json:"isFavorite" gorm:"not null;default:false"`
	IsArchived bool      `json:"isArchived" gorm:"not null;default:false"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate assigns a UUID and stamps JoinedAt when unset
func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = tx.NowFunc()
	}
	return nil
}
