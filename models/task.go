package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectTask is a unit of work inside a project
type ProjectTask struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'NotStarted'"`
	Priority    Priority   `json:"priority" gorm:"type:varchar(20);not null;default:'Medium'"`
	Deadline    time.Time  `json:"deadline" gorm:"index"`
	ProjectID   string     `json:"projectId" gorm:"type:varchar(36);not null;index"`
	CreatedByID *string    `json:"createdById" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Project   *Project       `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT"`
	CreatedBy *ProjectMember `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
}

// BeforeCreate assigns a UUID when the id is empty
func (t *ProjectTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsOngoing is true until the task is completed
func (t ProjectTask) IsOngoing() bool {
	return t.Status != TaskCompleted
}

// IsOverdue reports an ongoing task whose deadline has passed
func (t ProjectTask) IsOverdue(now time.Time) bool {
	return t.IsOngoing() && t.Deadline.Before(now)
}

// TaskAssignment links a task to a responsible user
type TaskAssignment struct {
	TaskID    string    `json:"taskId" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `json:"createdAt"`

	Task *ProjectTask `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:RESTRICT"`
	User *User        `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}
