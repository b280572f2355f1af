package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	ProjectID      uuid.UUID  `json:"project_id" binding:"required"`
	Title          string     `json:"title" binding:"required" validate:"required,not_empty"`
	Description    string     `json:"description"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	Status         string     `json:"status,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

// UpdateTaskRequest represents the request body for updating a task.
// ClearAssignee and ClearDueDate distinguish "set to null" from "leave as is".
type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	ClearAssignee  bool       `json:"clear_assignee,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

// AssignTaskRequest carries the new assignee; a null user_id unassigns.
type AssignTaskRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// LogTimeRequest carries worked hours to add to the task total.
type LogTimeRequest struct {
	Hours float64 `json:"hours" binding:"required"`
}

// CommentTaskRequest carries a comment to append to the task's audit trail.
type CommentTaskRequest struct {
	Text string `json:"text" binding:"required" validate:"required,not_empty"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	ActualHours    float64    `json:"actual_hours,omitempty"`
	Tags           []string   `json:"tags"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// TaskMutationResponse wraps a task plus any non-blocking warnings raised by
// the mutation, such as a due date already in the past.
type TaskMutationResponse struct {
	Task     TaskResponse `json:"task"`
	Warnings []string     `json:"warnings,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}
