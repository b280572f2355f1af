package permission

import (
	"testing"

	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanModifyProject(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()
	pc := ProjectContext{OwnerID: owner, TeamMemberIDs: []uuid.UUID{member}}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{ID: owner, Role: user.RoleMember}, true},
		{"admin", Actor{ID: uuid.New(), Role: user.RoleAdmin}, true},
		{"team member", Actor{ID: member, Role: user.RoleMember}, false},
		{"manager outsider", Actor{ID: uuid.New(), Role: user.RoleManager}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyProject(tt.actor, pc))
		})
	}
}

func TestCanView(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()
	pc := ProjectContext{OwnerID: owner, TeamMemberIDs: []uuid.UUID{member}}

	assert.True(t, CanView(Actor{ID: owner, Role: user.RoleMember}, pc))
	assert.True(t, CanView(Actor{ID: member, Role: user.RoleMember}, pc))
	assert.True(t, CanView(Actor{ID: uuid.New(), Role: user.RoleAdmin}, pc))
	assert.False(t, CanView(Actor{ID: uuid.New(), Role: user.RoleMember}, pc))
}

func TestCanDeleteTask(t *testing.T) {
	creator := uuid.New()
	assignee := uuid.New()
	tc := TaskContext{CreatorID: creator, AssignedToID: &assignee}

	assert.True(t, CanDeleteTask(Actor{ID: creator, Role: user.RoleMember}, tc))
	assert.True(t, CanDeleteTask(Actor{ID: uuid.New(), Role: user.RoleAdmin}, tc))
	assert.False(t, CanDeleteTask(Actor{ID: assignee, Role: user.RoleMember}, tc))
	assert.False(t, CanDeleteTask(Actor{ID: uuid.New(), Role: user.RoleManager}, tc))
}

func TestResolveTaskUpdate(t *testing.T) {
	owner := uuid.New()
	creator := uuid.New()
	assignee := uuid.New()
	pc := ProjectContext{OwnerID: owner, TeamMemberIDs: []uuid.UUID{creator, assignee}}
	tc := TaskContext{CreatorID: creator, AssignedToID: &assignee}

	t.Run("creator unrestricted", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: creator, Role: user.RoleMember}, tc, pc, []string{"title", "status"})
		assert.True(t, d.Allowed)
		assert.Empty(t, d.AllowedFields)
	})

	t.Run("owner unrestricted", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: owner, Role: user.RoleMember}, tc, pc, []string{"priority"})
		assert.True(t, d.Allowed)
		assert.Empty(t, d.AllowedFields)
	})

	t.Run("admin unrestricted", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: uuid.New(), Role: user.RoleAdmin}, tc, pc, []string{"due_date"})
		assert.True(t, d.Allowed)
	})

	t.Run("assignee within allowlist", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: assignee, Role: user.RoleMember}, tc, pc, []string{"status", "actual_hours", "description"})
		assert.True(t, d.Allowed)
		assert.Equal(t, []string{"status", "actual_hours", "description"}, d.AllowedFields)
	})

	t.Run("assignee outside allowlist denies whole update", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: assignee, Role: user.RoleMember}, tc, pc, []string{"status", "title"})
		assert.False(t, d.Allowed)
	})

	t.Run("unrelated member denied", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: uuid.New(), Role: user.RoleMember}, tc, pc, []string{"status"})
		assert.False(t, d.Allowed)
	})

	t.Run("unassigned task leaves no assignee path", func(t *testing.T) {
		d := ResolveTaskUpdate(Actor{ID: assignee, Role: user.RoleMember}, TaskContext{CreatorID: creator}, pc, []string{"status"})
		assert.False(t, d.Allowed)
	})
}
