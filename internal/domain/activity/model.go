package activity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidInput = errors.New("invalid input")

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionComplete Action = "complete"
	ActionAssign   Action = "assign"
	ActionComment  Action = "comment"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionComplete, ActionAssign, ActionComment:
		return true
	}
	return false
}

// Actions lists every action kind, in a stable order, for fixed-key report
// output.
func Actions() []Action {
	return []Action{ActionCreate, ActionUpdate, ActionDelete, ActionComplete, ActionAssign, ActionComment}
}

type EntityType string

const (
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
)

// Entry is one append-only audit record. Entries are never updated or removed
// by application logic; only the retention sweep deletes them.
type Entry struct {
	ID         uuid.UUID              `json:"id" gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID              `json:"user_id" gorm:"type:uuid;not null;index:idx_activity_user"`
	Action     Action                 `json:"action" gorm:"not null;index:idx_activity_action"`
	EntityType EntityType             `json:"entity_type" gorm:"not null"`
	EntityID   uuid.UUID              `json:"entity_id" gorm:"type:uuid;not null;index:idx_activity_entity"`
	Changes    datatypes.JSON         `json:"changes,omitempty" gorm:"type:jsonb"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time              `json:"created_at" gorm:"not null;index:idx_activity_created"`
}

// TableName specifies the table name for activity entries
func (Entry) TableName() string {
	return "activity_log"
}

// BeforeCreate is called before inserting a new entry
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if !e.Action.IsValid() {
		return ErrInvalidInput
	}
	return nil
}
