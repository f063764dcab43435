package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFile is an uploaded attachment; the bytes live in file storage
type ProjectFile struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	Size            int64     `json:"size"`
	Type            string    `json:"type" gorm:"type:varchar(100)"`
	StoragePath     string    `json:"storagePath" gorm:"type:varchar(500);not null"`
	UploadedAt      time.Time `json:"uploadedAt"`
	ProjectMemberID *string   `json:"projectMemberId" gorm:"type:varchar(36);index"`
	TaskID          *string   `json:"taskId" gorm:"type:varchar(36);index"`

	ProjectMember *ProjectMember `json:"-" gorm:"foreignKey:ProjectMemberID;constraint:OnDelete:SET NULL"`
	Task          *ProjectTask   `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL"`
}

// BeforeCreate assigns a UUID and stamps UploadedAt when unset
func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = tx.NowFunc()
	}
	return nil
}

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&ProjectMember{},
		&ProjectTask{},
		&TaskAssignment{},
		&Comment{},
		&CommentMention{},
		&ProjectFile{},
	}
}
