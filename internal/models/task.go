package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

const DefaultPriority = "medium"

type Task struct {
	ID            uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title         string     `json:"title" gorm:"not null"`
	Details       string     `json:"details" gorm:"not null"`
	Status        string     `json:"status" gorm:"not null;default:'todo'"`
	Priority      string     `json:"priority" gorm:"not null;default:'medium'"`
	AssigneeEmail *string    `json:"assigneeEmail" gorm:"column:assignee_email;index"`
	OwnerEmail    *string    `json:"ownerEmail" gorm:"column:owner_email"`
	DueDate       *time.Time `json:"dueDate" gorm:"column:due_date"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// No attachment storage exists; always serialized as an empty list.
	Attachments []string `json:"attachments" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) RecordID() uuid.UUID {
	return t.ID
}

func (t *Task) SetRecordID(id uuid.UUID) {
	t.ID = id
}

// AfterFind keeps the attachments placeholder non-nil after every read.
func (t *Task) AfterFind(_ *gorm.DB) error {
	if t.Attachments == nil {
		t.Attachments = []string{}
	}
	return nil
}

func (t *Task) IsAssignedTo(email string) bool {
	return t.AssigneeEmail != nil && *t.AssigneeEmail == email
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}
