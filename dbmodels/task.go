package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// ActiveTaskStatuses are the non-terminal statuses counted for workload.
var ActiveTaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	AssigneeID     *uint          `gorm:"index" json:"assignee_id"`
	CreatedByID    uint           `gorm:"index;not null" json:"created_by_id"`
	DueDate        *time.Time     `json:"due_date"`
	Priority       string         `gorm:"type:varchar(50);default:medium;index" json:"priority"` // "low", "medium", "high", "urgent"
	Status         string         `gorm:"type:varchar(50);default:todo;index" json:"status"`     // "todo", "in_progress", "review", "completed", "cancelled"
	EstimatedHours *float64       `json:"estimated_hours"`
	ActualHours    *float64       `json:"actual_hours"`
	Tags           datatypes.JSON `json:"tags"` // ["backend", "urgent", "client-x"]
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	CompletedAt    *time.Time     `json:"completed_at"`

	Assignee *User `gorm:"foreignKey:AssigneeID;references:ID" json:"-"`
	Creator  *User `gorm:"foreignKey:CreatedByID;references:ID" json:"-"`
}

type TaskComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Task *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}
