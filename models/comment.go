package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a message left by a member on a task
type Comment struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Content         string    `json:"content" gorm:"not null"`
	TaskID          string    `json:"taskId" gorm:"type:varchar(36);not null;index"`
	ProjectMemberID string    `json:"projectMemberId" gorm:"type:varchar(36);not null;index"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`

	Task          *ProjectTask   `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:RESTRICT"`
	ProjectMember *ProjectMember `json:"-" gorm:"foreignKey:ProjectMemberID;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate assigns a UUID when the id is empty
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentMention records a member mentioned in a comment
type CommentMention struct {
	CommentID       string `json:"commentId" gorm:"primaryKey;type:varchar(36)"`
	ProjectMemberID string `json:"projectMemberId" gorm:"primaryKey;type:varchar(36)"`

	Comment       *Comment       `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:RESTRICT"`
	ProjectMember *ProjectMember `json:"-" gorm:"foreignKey:ProjectMemberID;constraint:OnDelete:RESTRICT"`
}
