package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotAuthorized = errors.New("not authorized")
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Statuses lists every task status, in lifecycle order, for fixed-key report
// output.
func Statuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Priorities lists every task priority for fixed-key report output.
func Priorities() []TaskPriority {
	return []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}
}

const (
	titleMinLen       = 3
	titleMaxLen       = 200
	descriptionMaxLen = 2000
)

// Task represents a task belonging to exactly one project
type Task struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID    uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index:idx_task_project"`
	Title        string       `json:"title" gorm:"type:varchar(200);not null"`
	Description  string       `json:"description" gorm:"type:text"`
	AssignedToID *uuid.UUID   `json:"assigned_to_id,omitempty" gorm:"type:uuid;index:idx_task_assignee"`
	Status       TaskStatus   `json:"status" gorm:"not null;default:'todo';index:idx_task_status"`
	Priority     TaskPriority `json:"priority" gorm:"not null;default:'medium';index:idx_task_priority"`
	DueDate      *time.Time   `json:"due_date,omitempty" gorm:"index:idx_task_due"`

	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	ActualHours    float64 `json:"actual_hours,omitempty"`

	Tags      []string `json:"tags" gorm:"type:jsonb;serializer:json"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index:idx_task_creator"`

	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// Validate checks if the task data is valid
func (t *Task) Validate() error {
	title := strings.TrimSpace(t.Title)
	if len(title) < titleMinLen || len(title) > titleMaxLen {
		return ErrInvalidInput
	}
	if len(t.Description) > descriptionMaxLen {
		return ErrInvalidInput
	}
	if t.ProjectID == uuid.Nil {
		return ErrInvalidInput
	}
	if t.CreatedBy == uuid.Nil {
		return ErrInvalidInput
	}
	if !t.Status.IsValid() {
		return ErrInvalidInput
	}
	if !t.Priority.IsValid() {
		return ErrInvalidInput
	}
	if t.EstimatedHours < 0 || t.ActualHours < 0 {
		return ErrInvalidInput
	}
	return nil
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	return t.Validate()
}

// BeforeUpdate is called before updating a task record
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	return t.Validate()
}

// IsOverdue reports whether the task is past due and not yet done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusDone
}
