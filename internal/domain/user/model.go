package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a user's system-wide role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User represents a user account. Accounts are created and maintained by the
// external auth service; this service only reads them for permission checks
// and report display names.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username  string    `json:"username" gorm:"uniqueIndex:idx_user_username;not null"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      Role      `json:"role" gorm:"not null;default:'member';index:idx_user_role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new user record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	return nil
}

// DisplayName returns the name shown in reports, falling back to the username
// when the profile has no name set.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
