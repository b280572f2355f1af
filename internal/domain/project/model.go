package project

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrHasTasks        = errors.New("project still has tasks")
	ErrOwnerRemoval    = errors.New("project owner cannot be removed from the team")
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// IsValid validates the project status
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "low"
	ProjectPriorityMedium ProjectPriority = "medium"
	ProjectPriorityHigh   ProjectPriority = "high"
)

func (p ProjectPriority) IsValid() bool {
	switch p {
	case ProjectPriorityLow, ProjectPriorityMedium, ProjectPriorityHigh:
		return true
	}
	return false
}

type UUIDSlice []uuid.UUID

// Value implements the driver.Valuer interface for UUIDSlice
func (u UUIDSlice) Value() (driver.Value, error) {
	if len(u) == 0 {
		return "[]", nil
	}
	return json.Marshal(u)
}

// Scan implements the sql.Scanner interface for UUIDSlice
func (u *UUIDSlice) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal UUIDSlice value: %v", value)
	}
	return json.Unmarshal(bytes, u)
}

// Contains reports whether the slice holds the given id.
func (u UUIDSlice) Contains(id uuid.UUID) bool {
	for _, v := range u {
		if v == id {
			return true
		}
	}
	return false
}

// Metadata holds the denormalized task counters plus the project priority.
// The counters are a cache over the tasks table; they are recomputed from a
// count query after every task mutation, never incremented in place.
type Metadata struct {
	TotalTasks     int64           `json:"total_tasks" gorm:"column:meta_total_tasks;not null;default:0"`
	CompletedTasks int64           `json:"completed_tasks" gorm:"column:meta_completed_tasks;not null;default:0"`
	Priority       ProjectPriority `json:"priority" gorm:"column:meta_priority;not null;default:'medium'"`
}

// Project represents a project owning a set of tasks
type Project struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	Name          string        `json:"name" gorm:"type:varchar(100);not null"`
	Description   string        `json:"description" gorm:"type:text"`
	OwnerID       uuid.UUID     `json:"owner_id" gorm:"type:uuid;not null;index:idx_project_owner"`
	TeamMemberIDs UUIDSlice     `json:"team_member_ids" gorm:"type:jsonb"`
	Status        ProjectStatus `json:"status" gorm:"not null;default:'active';index:idx_project_status"`
	Tags          []string      `json:"tags" gorm:"type:jsonb;serializer:json"`
	Metadata      Metadata      `json:"metadata" gorm:"embedded"`
	CreatedAt     time.Time     `json:"created_at" gorm:"index:idx_project_created"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// BeforeCreate is called before inserting a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if p.Metadata.Priority == "" {
		p.Metadata.Priority = ProjectPriorityMedium
	}
	if !p.Status.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// BeforeUpdate is called before updating a project
func (p *Project) BeforeUpdate(tx *gorm.DB) error {
	if !p.Status.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// IsMember reports whether the user is the owner or on the team.
func (p *Project) IsMember(userID uuid.UUID) bool {
	return p.OwnerID == userID || p.TeamMemberIDs.Contains(userID)
}
