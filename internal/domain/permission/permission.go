package permission

import (
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
)

// Actor is the authenticated caller as seen by the capability resolver.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// ProjectContext is the snapshot of project state a decision is made against.
// Decisions are read-then-decide over snapshots; there is no locking between
// the permission read and the subsequent write (see counter recompute notes).
type ProjectContext struct {
	OwnerID       uuid.UUID
	TeamMemberIDs []uuid.UUID
}

// TaskContext is the snapshot of task state a decision is made against.
type TaskContext struct {
	CreatorID    uuid.UUID
	AssignedToID *uuid.UUID
}

// Decision is an explicit allow/deny plus the field set the actor may touch.
// An empty AllowedFields with Allowed=true means unrestricted access.
type Decision struct {
	Allowed       bool
	AllowedFields []string
}

// assigneeFields is the allowlist for actors whose only claim on a task is
// being its current assignee. Field names match the update request JSON keys.
var assigneeFields = []string{"status", "actual_hours", "description"}

func (p ProjectContext) isTeamMember(id uuid.UUID) bool {
	for _, m := range p.TeamMemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// CanModifyProject reports whether the actor may update, archive, or delete
// the project, or change its team.
func CanModifyProject(actor Actor, pc ProjectContext) bool {
	return actor.Role == user.RoleAdmin || actor.ID == pc.OwnerID
}

// CanView reports whether the actor may read the project and its tasks.
func CanView(actor Actor, pc ProjectContext) bool {
	return actor.Role == user.RoleAdmin || actor.ID == pc.OwnerID || pc.isTeamMember(actor.ID)
}

// CanDeleteTask reports whether the actor may hard-delete the task. Ownership
// of the project or being the assignee does not suffice.
func CanDeleteTask(actor Actor, tc TaskContext) bool {
	return actor.Role == user.RoleAdmin || actor.ID == tc.CreatorID
}

// ResolveTaskUpdate resolves the actor's capability over a task update.
// Admins, the task creator, and the project owner get unrestricted access.
// A bare assignee is limited to the assignee allowlist: if the requested
// field set contains anything outside it, the whole update is denied.
func ResolveTaskUpdate(actor Actor, tc TaskContext, pc ProjectContext, requestedFields []string) Decision {
	if actor.Role == user.RoleAdmin || actor.ID == tc.CreatorID || actor.ID == pc.OwnerID {
		return Decision{Allowed: true}
	}

	if tc.AssignedToID == nil || *tc.AssignedToID != actor.ID {
		return Decision{Allowed: false}
	}

	allowed := make(map[string]struct{}, len(assigneeFields))
	for _, f := range assigneeFields {
		allowed[f] = struct{}{}
	}
	for _, f := range requestedFields {
		if _, ok := allowed[f]; !ok {
			return Decision{Allowed: false, AllowedFields: assigneeFields}
		}
	}
	return Decision{Allowed: true, AllowedFields: assigneeFields}
}
