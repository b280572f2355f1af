package task

import (
	"context"
	"testing"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/events"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTaskRepo struct {
	tasks map[uuid.UUID]*Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockTaskRepo) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var out []Task
	for _, t := range m.tasks {
		if filter.ProjectID != nil && t.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *mockTaskRepo) Update(ctx context.Context, t *Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, int64, error) {
	var total, done int64
	for _, t := range m.tasks {
		if t.ProjectID != projectID {
			continue
		}
		total++
		if t.Status == TaskStatusDone {
			done++
		}
	}
	return total, done, nil
}

type mockProjectStore struct {
	projects map[uuid.UUID]*project.Project
}

func newMockProjectStore(projects ...*project.Project) *mockProjectStore {
	m := &mockProjectStore{projects: make(map[uuid.UUID]*project.Project)}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectStore) UpdateTaskCounters(ctx context.Context, id uuid.UUID, total, completed int64) error {
	p, ok := m.projects[id]
	if !ok {
		return project.ErrProjectNotFound
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

type mockRecorder struct {
	entries []*activity.Entry
}

func (m *mockRecorder) Create(ctx context.Context, entry *activity.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockRecorder) last() *activity.Entry {
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

type mockPublisher struct {
	events []*events.BoardEvent
}

func (m *mockPublisher) PublishBoardEvent(ctx context.Context, event *events.BoardEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (m *mockPublisher) byType(eventType string) []*events.BoardEvent {
	var matched []*events.BoardEvent
	for _, e := range m.events {
		if e.EventType == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type fixture struct {
	svc       Service
	repo      *mockTaskRepo
	projects  *mockProjectStore
	recorder  *mockRecorder
	publisher *mockPublisher

	owner    *user.User
	creator  *user.User
	assignee *user.User
	outsider *user.User
	admin    *user.User
	project  *project.Project
}

func newFixture() *fixture {
	f := &fixture{
		owner:    &user.User{ID: uuid.New(), Username: "owner", Role: user.RoleMember},
		creator:  &user.User{ID: uuid.New(), Username: "creator", Role: user.RoleMember},
		assignee: &user.User{ID: uuid.New(), Username: "assignee", Role: user.RoleMember},
		outsider: &user.User{ID: uuid.New(), Username: "outsider", Role: user.RoleMember},
		admin:    &user.User{ID: uuid.New(), Username: "admin", Role: user.RoleAdmin},
	}
	f.project = &project.Project{
		ID:            uuid.New(),
		Name:          "Fixture Project",
		OwnerID:       f.owner.ID,
		TeamMemberIDs: project.UUIDSlice{f.creator.ID, f.assignee.ID},
		Status:        project.ProjectStatusActive,
	}
	f.repo = newMockTaskRepo()
	f.projects = newMockProjectStore(f.project)
	f.recorder = &mockRecorder{}
	f.publisher = &mockPublisher{}
	users := newMockUserStore(f.owner, f.creator, f.assignee, f.outsider, f.admin)
	f.svc = NewService(f.repo, f.projects, users, f.recorder, f.publisher, zap.NewNop())
	return f
}

func (f *fixture) createTask(t *testing.T, input CreateTaskInput) *Task {
	t.Helper()
	if input.ProjectID == uuid.Nil {
		input.ProjectID = f.project.ID
	}
	if input.Title == "" {
		input.Title = "Fixture task"
	}
	task, _, err := f.svc.CreateTask(context.Background(), f.creator.ID, input)
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }

func TestCreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("member creates with defaults and counters refresh", func(t *testing.T) {
		f := newFixture()
		task, warnings, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID:    f.project.ID,
			Title:        "Write onboarding docs",
			AssignedToID: &f.assignee.ID,
		})
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, TaskStatusTodo, task.Status)
		assert.Equal(t, TaskPriorityMedium, task.Priority)
		assert.Equal(t, f.creator.ID, task.CreatedBy)
		assert.Nil(t, task.CompletedAt)

		assert.Equal(t, int64(1), f.project.Metadata.TotalTasks)
		assert.Equal(t, int64(0), f.project.Metadata.CompletedTasks)

		entry := f.recorder.last()
		require.NotNil(t, entry)
		assert.Equal(t, activity.ActionCreate, entry.Action)
		assert.Equal(t, activity.EntityTask, entry.EntityType)

		refresh := f.publisher.byType(events.BoardEventCounterRefresh)
		require.Len(t, refresh, 1)
		assert.Equal(t, f.project.ID, refresh[0].ProjectID)
		assert.Equal(t, map[string]interface{}{
			"total_tasks":     int64(1),
			"completed_tasks": int64(0),
		}, refresh[0].Details)

		invalidate := f.publisher.byType(events.BoardEventCacheInvalidate)
		assert.Len(t, invalidate, 1)
	})

	t.Run("past due date warns but succeeds", func(t *testing.T) {
		f := newFixture()
		due := time.Now().UTC().Add(-48 * time.Hour)
		_, warnings, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID: f.project.ID,
			Title:     "Already late",
			DueDate:   &due,
		})
		require.NoError(t, err)
		assert.Contains(t, warnings, WarnPastDueDate)
	})

	t.Run("created as done stamps completion", func(t *testing.T) {
		f := newFixture()
		task, _, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID: f.project.ID,
			Title:     "Retroactive entry",
			Status:    TaskStatusDone,
		})
		require.NoError(t, err)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, int64(1), f.project.Metadata.CompletedTasks)
	})

	t.Run("assignee must be a project member", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID:    f.project.ID,
			Title:        "Misassigned",
			AssignedToID: &f.outsider.ID,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("outsider cannot create", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.CreateTask(ctx, f.outsider.ID, CreateTaskInput{
			ProjectID: f.project.ID,
			Title:     "Sneaky task",
		})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("title too short", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID: f.project.ID,
			Title:     "ab",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.CreateTask(ctx, f.creator.ID, CreateTaskInput{
			ProjectID: uuid.New(),
			Title:     "Orphan",
		})
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
	})
}

func TestUpdateTaskPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee may update allowlisted fields", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		updated, _, err := f.svc.UpdateTask(ctx, f.assignee.ID, task.ID, UpdateTaskInput{
			Status:      ptr(TaskStatusInProgress),
			ActualHours: ptr(2.5),
			Description: ptr("picked this up"),
		})
		require.NoError(t, err)
		assert.Equal(t, TaskStatusInProgress, updated.Status)
		assert.Equal(t, 2.5, updated.ActualHours)
	})

	t.Run("assignee touching title denies the whole update", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		_, _, err := f.svc.UpdateTask(ctx, f.assignee.ID, task.ID, UpdateTaskInput{
			Status: ptr(TaskStatusInProgress),
			Title:  ptr("Renamed by assignee"),
		})
		assert.ErrorIs(t, err, ErrNotAuthorized)

		stored, findErr := f.repo.FindByID(ctx, task.ID)
		require.NoError(t, findErr)
		assert.Equal(t, TaskStatusTodo, stored.Status)
	})

	t.Run("creator has unrestricted access", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		updated, _, err := f.svc.UpdateTask(ctx, f.creator.ID, task.ID, UpdateTaskInput{
			Title:    ptr("Renamed by creator"),
			Priority: ptr(TaskPriorityHigh),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed by creator", updated.Title)
		assert.Equal(t, TaskPriorityHigh, updated.Priority)
	})

	t.Run("project owner has unrestricted access", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		_, _, err := f.svc.UpdateTask(ctx, f.owner.ID, task.ID, UpdateTaskInput{
			Title: ptr("Renamed by owner"),
		})
		assert.NoError(t, err)
	})

	t.Run("non-assignee member is denied", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.creator.ID})

		_, _, err := f.svc.UpdateTask(ctx, f.assignee.ID, task.ID, UpdateTaskInput{
			Status: ptr(TaskStatusDone),
		})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestUpdateTaskCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("entering done stamps completion and records complete", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		updated, _, err := f.svc.UpdateTask(ctx, f.creator.ID, task.ID, UpdateTaskInput{
			Status: ptr(TaskStatusDone),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.CompletedAt)

		assert.Equal(t, activity.ActionComplete, f.recorder.last().Action)
		assert.Equal(t, int64(1), f.project.Metadata.CompletedTasks)
	})

	t.Run("reopening clears completion and counters follow", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{Status: TaskStatusDone})
		require.Equal(t, int64(1), f.project.Metadata.CompletedTasks)

		updated, _, err := f.svc.UpdateTask(ctx, f.creator.ID, task.ID, UpdateTaskInput{
			Status: ptr(TaskStatusInProgress),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)
		assert.Equal(t, int64(0), f.project.Metadata.CompletedTasks)
		assert.Equal(t, int64(1), f.project.Metadata.TotalTasks)
	})

	t.Run("staying done does not re-record complete", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{Status: TaskStatusDone})

		_, _, err := f.svc.UpdateTask(ctx, f.creator.ID, task.ID, UpdateTaskInput{
			Description: ptr("still done"),
		})
		require.NoError(t, err)
		assert.Equal(t, activity.ActionUpdate, f.recorder.last().Action)
	})
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("creator deletes and counters refresh", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{Title: "Short lived"})
		require.Equal(t, int64(1), f.project.Metadata.TotalTasks)

		require.NoError(t, f.svc.DeleteTask(ctx, f.creator.ID, task.ID))
		assert.Equal(t, int64(0), f.project.Metadata.TotalTasks)

		entry := f.recorder.last()
		assert.Equal(t, activity.ActionDelete, entry.Action)
		assert.Equal(t, "Short lived", entry.Metadata["title"])
	})

	t.Run("project owner alone cannot delete", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		err := f.svc.DeleteTask(ctx, f.owner.ID, task.ID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("admin can delete", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		assert.NoError(t, f.svc.DeleteTask(ctx, f.admin.ID, task.ID))
	})

	t.Run("missing task", func(t *testing.T) {
		f := newFixture()
		err := f.svc.DeleteTask(ctx, f.creator.ID, uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestAssignTask(t *testing.T) {
	ctx := context.Background()

	t.Run("creator assigns a member", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		updated, err := f.svc.AssignTask(ctx, f.creator.ID, task.ID, &f.assignee.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.AssignedToID)
		assert.Equal(t, f.assignee.ID, *updated.AssignedToID)
		assert.Equal(t, activity.ActionAssign, f.recorder.last().Action)
	})

	t.Run("unassign", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		updated, err := f.svc.AssignTask(ctx, f.creator.ID, task.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, updated.AssignedToID)
	})

	t.Run("non-member assignee rejected", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		_, err := f.svc.AssignTask(ctx, f.creator.ID, task.ID, &f.outsider.ID)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("assignee cannot reassign", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		_, err := f.svc.AssignTask(ctx, f.assignee.ID, task.ID, nil)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestLogTime(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee accumulates hours", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		_, err := f.svc.LogTime(ctx, f.assignee.ID, task.ID, 1.5)
		require.NoError(t, err)
		updated, err := f.svc.LogTime(ctx, f.assignee.ID, task.ID, 2.0)
		require.NoError(t, err)
		assert.Equal(t, 3.5, updated.ActualHours)
	})

	t.Run("non-positive hours rejected", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})

		_, err := f.svc.LogTime(ctx, f.assignee.ID, task.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = f.svc.LogTime(ctx, f.assignee.ID, task.ID, -2)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unrelated member denied", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{AssignedToID: &f.creator.ID})

		_, err := f.svc.LogTime(ctx, f.assignee.ID, task.ID, 1)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestCommentTask(t *testing.T) {
	ctx := context.Background()

	t.Run("member comments", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		require.NoError(t, f.svc.CommentTask(ctx, f.assignee.ID, task.ID, "looks good"))
		entry := f.recorder.last()
		assert.Equal(t, activity.ActionComment, entry.Action)
		assert.Equal(t, "looks good", entry.Metadata["comment"])
	})

	t.Run("outsider denied", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		err := f.svc.CommentTask(ctx, f.outsider.ID, task.ID, "hi")
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("blank comment rejected", func(t *testing.T) {
		f := newFixture()
		task := f.createTask(t, CreateTaskInput{})

		err := f.svc.CommentTask(ctx, f.creator.ID, task.ID, "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("project scope requires visibility", func(t *testing.T) {
		f := newFixture()
		f.createTask(t, CreateTaskInput{})

		_, _, err := f.svc.ListTasks(ctx, f.outsider.ID, TaskFilter{ProjectID: &f.project.ID})
		assert.ErrorIs(t, err, ErrNotAuthorized)

		tasks, total, err := f.svc.ListTasks(ctx, f.assignee.ID, TaskFilter{ProjectID: &f.project.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, tasks, 1)
	})

	t.Run("unscoped listing narrows to own assignments", func(t *testing.T) {
		f := newFixture()
		f.createTask(t, CreateTaskInput{AssignedToID: &f.assignee.ID})
		f.createTask(t, CreateTaskInput{Title: "Unassigned work"})

		tasks, _, err := f.svc.ListTasks(ctx, f.assignee.ID, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})
}
