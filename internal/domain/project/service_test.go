package project

import (
	"context"
	"testing"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/events"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	projects map[uuid.UUID]*Project

	createErr error
	updateErr error
	deleteErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{projects: make(map[uuid.UUID]*Project)}
}

func (m *mockRepository) Create(ctx context.Context, p *Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) FindAll(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	var out []Project
	for _, p := range m.projects {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) Update(ctx context.Context, p *Project) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.projects[p.ID]; !ok {
		return ErrProjectNotFound
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockRepository) UpdateTaskCounters(ctx context.Context, id uuid.UUID, total, completed int64) error {
	p, ok := m.projects[id]
	if !ok {
		return ErrProjectNotFound
	}
	p.Metadata.TotalTasks = total
	p.Metadata.CompletedTasks = completed
	return nil
}

type mockUserStore struct {
	users map[uuid.UUID]*user.User
}

func newMockUserStore(users ...*user.User) *mockUserStore {
	m := &mockUserStore{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

type mockTaskCounter struct {
	total int64
	done  int64
	err   error
}

func (m *mockTaskCounter) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, int64, error) {
	return m.total, m.done, m.err
}

type mockRecorder struct {
	entries []*activity.Entry
}

func (m *mockRecorder) Create(ctx context.Context, entry *activity.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

type mockPublisher struct {
	events   []*events.BoardEvent
	patterns []string
}

func (m *mockPublisher) PublishBoardEvent(ctx context.Context, event *events.BoardEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) DeletePattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

type serviceFixture struct {
	svc       Service
	repo      *mockRepository
	users     *mockUserStore
	tasks     *mockTaskCounter
	recorder  *mockRecorder
	publisher *mockPublisher
}

func newServiceFixture(users ...*user.User) *serviceFixture {
	f := &serviceFixture{
		repo:      newMockRepository(),
		users:     newMockUserStore(users...),
		tasks:     &mockTaskCounter{},
		recorder:  &mockRecorder{},
		publisher: &mockPublisher{},
	}
	f.svc = NewService(f.repo, f.users, f.tasks, f.recorder, f.publisher, zap.NewNop())
	return f
}

func testUser(role user.Role) *user.User {
	return &user.User{ID: uuid.New(), Username: "u-" + uuid.NewString()[:8], Role: role}
}

func TestCreateProject(t *testing.T) {
	owner := testUser(user.RoleMember)
	member := testUser(user.RoleMember)
	f := newServiceFixture(owner, member)
	ctx := context.Background()

	t.Run("success with defaults", func(t *testing.T) {
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{
			Name:          "Website Redesign",
			TeamMemberIDs: []uuid.UUID{member.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, owner.ID, p.OwnerID)
		assert.Equal(t, ProjectStatusActive, p.Status)
		assert.Equal(t, ProjectPriorityMedium, p.Metadata.Priority)
		assert.Equal(t, int64(0), p.Metadata.TotalTasks)
		assert.True(t, p.TeamMemberIDs.Contains(member.ID))

		require.Len(t, f.recorder.entries, 1)
		assert.Equal(t, activity.ActionCreate, f.recorder.entries[0].Action)
		assert.Equal(t, activity.EntityProject, f.recorder.entries[0].EntityType)
		assert.Equal(t, p.ID, f.recorder.entries[0].EntityID)
		require.Len(t, f.publisher.events, 1)
	})

	t.Run("owner is not duplicated into the team", func(t *testing.T) {
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{
			Name:          "Internal Tools",
			TeamMemberIDs: []uuid.UUID{owner.ID, member.ID, member.ID},
		})
		require.NoError(t, err)
		assert.Len(t, p.TeamMemberIDs, 1)
	})

	t.Run("name too short", func(t *testing.T) {
		_, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "ab"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown team member", func(t *testing.T) {
		_, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{
			Name:          "Ghost Team",
			TeamMemberIDs: []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := f.svc.CreateProject(ctx, uuid.New(), CreateProjectInput{Name: "Nope"})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestUpdateProject(t *testing.T) {
	owner := testUser(user.RoleMember)
	admin := testUser(user.RoleAdmin)
	member := testUser(user.RoleMember)
	f := newServiceFixture(owner, admin, member)
	ctx := context.Background()

	p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{
		Name:          "Mobile App",
		TeamMemberIDs: []uuid.UUID{member.ID},
	})
	require.NoError(t, err)

	t.Run("owner can update", func(t *testing.T) {
		name := "Mobile App v2"
		status := ProjectStatusCompleted
		updated, err := f.svc.UpdateProject(ctx, owner.ID, p.ID, UpdateProjectInput{
			Name:   &name,
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "Mobile App v2", updated.Name)
		assert.Equal(t, ProjectStatusCompleted, updated.Status)
	})

	t.Run("admin can update someone else's project", func(t *testing.T) {
		priority := ProjectPriorityHigh
		updated, err := f.svc.UpdateProject(ctx, admin.ID, p.ID, UpdateProjectInput{Priority: &priority})
		require.NoError(t, err)
		assert.Equal(t, ProjectPriorityHigh, updated.Metadata.Priority)
	})

	t.Run("team member cannot update", func(t *testing.T) {
		name := "Hijacked"
		_, err := f.svc.UpdateProject(ctx, member.ID, p.ID, UpdateProjectInput{Name: &name})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := ProjectStatus("paused")
		_, err := f.svc.UpdateProject(ctx, owner.ID, p.ID, UpdateProjectInput{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing project", func(t *testing.T) {
		name := "Anything"
		_, err := f.svc.UpdateProject(ctx, owner.ID, uuid.New(), UpdateProjectInput{Name: &name})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestRemoveProject(t *testing.T) {
	owner := testUser(user.RoleMember)
	ctx := context.Background()

	t.Run("soft delete archives", func(t *testing.T) {
		f := newServiceFixture(owner)
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Archive Me"})
		require.NoError(t, err)

		require.NoError(t, f.svc.RemoveProject(ctx, owner.ID, p.ID, false))

		stored, err := f.repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, ProjectStatusArchived, stored.Status)
	})

	t.Run("hard delete rejected while tasks remain", func(t *testing.T) {
		f := newServiceFixture(owner)
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Busy Project"})
		require.NoError(t, err)

		f.tasks.total = 3
		err = f.svc.RemoveProject(ctx, owner.ID, p.ID, true)
		assert.ErrorIs(t, err, ErrHasTasks)

		_, err = f.repo.FindByID(ctx, p.ID)
		assert.NoError(t, err)
	})

	t.Run("hard delete succeeds once empty", func(t *testing.T) {
		f := newServiceFixture(owner)
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Empty Project"})
		require.NoError(t, err)

		require.NoError(t, f.svc.RemoveProject(ctx, owner.ID, p.ID, true))

		_, err = f.repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, ErrProjectNotFound)

		last := f.recorder.entries[len(f.recorder.entries)-1]
		assert.Equal(t, activity.ActionDelete, last.Action)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		stranger := testUser(user.RoleMember)
		f := newServiceFixture(owner, stranger)
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Protected"})
		require.NoError(t, err)

		err = f.svc.RemoveProject(ctx, stranger.ID, p.ID, true)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestTeamMembership(t *testing.T) {
	owner := testUser(user.RoleMember)
	member := testUser(user.RoleMember)
	ctx := context.Background()

	setup := func(t *testing.T) (*serviceFixture, *Project) {
		f := newServiceFixture(owner, member)
		p, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Team Project"})
		require.NoError(t, err)
		return f, p
	}

	t.Run("add is idempotent", func(t *testing.T) {
		f, p := setup(t)
		require.NoError(t, f.svc.AddTeamMember(ctx, owner.ID, p.ID, member.ID))
		require.NoError(t, f.svc.AddTeamMember(ctx, owner.ID, p.ID, member.ID))

		stored, err := f.repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, stored.TeamMemberIDs, 1)
	})

	t.Run("add unknown user", func(t *testing.T) {
		f, p := setup(t)
		err := f.svc.AddTeamMember(ctx, owner.ID, p.ID, uuid.New())
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("remove member", func(t *testing.T) {
		f, p := setup(t)
		require.NoError(t, f.svc.AddTeamMember(ctx, owner.ID, p.ID, member.ID))
		require.NoError(t, f.svc.RemoveTeamMember(ctx, owner.ID, p.ID, member.ID))

		stored, err := f.repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.TeamMemberIDs)
	})

	t.Run("owner cannot be removed", func(t *testing.T) {
		f, p := setup(t)
		err := f.svc.RemoveTeamMember(ctx, owner.ID, p.ID, owner.ID)
		assert.ErrorIs(t, err, ErrOwnerRemoval)
	})

	t.Run("removing a non-member is a no-op", func(t *testing.T) {
		f, p := setup(t)
		assert.NoError(t, f.svc.RemoveTeamMember(ctx, owner.ID, p.ID, member.ID))
	})
}

func TestListProjects(t *testing.T) {
	owner := testUser(user.RoleMember)
	outsider := testUser(user.RoleMember)
	admin := testUser(user.RoleAdmin)
	f := newServiceFixture(owner, outsider, admin)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Visible Project"})
	require.NoError(t, err)

	t.Run("admin sees everything", func(t *testing.T) {
		projects, total, err := f.svc.ListProjects(ctx, admin.ID, ProjectFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, projects, 1)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		projects, total, err := f.svc.ListProjects(ctx, outsider.ID, ProjectFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, projects)
	})
}
