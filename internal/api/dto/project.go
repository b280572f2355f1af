package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name          string      `json:"name" binding:"required" validate:"required,not_empty"`
	Description   string      `json:"description"`
	TeamMemberIDs []uuid.UUID `json:"team_member_ids,omitempty"`
	Status        string      `json:"status,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
	Priority      string      `json:"priority,omitempty"`
}

// UpdateProjectRequest represents the request body for updating a project
type UpdateProjectRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
}

// TeamMemberRequest carries the target user for membership changes.
type TeamMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ProjectMetadataResponse carries the denormalized counters and priority.
type ProjectMetadataResponse struct {
	TotalTasks     int64  `json:"total_tasks"`
	CompletedTasks int64  `json:"completed_tasks"`
	Priority       string `json:"priority"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID            uuid.UUID               `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	OwnerID       uuid.UUID               `json:"owner_id"`
	TeamMemberIDs []uuid.UUID             `json:"team_member_ids"`
	Status        string                  `json:"status"`
	Tags          []string                `json:"tags"`
	Metadata      ProjectMetadataResponse `json:"metadata"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}
