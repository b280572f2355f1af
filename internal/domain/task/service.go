package task

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/events"
	"github.com/Youngermaster/taskhub/internal/domain/permission"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const commentMaxLen = 1000

// WarnPastDueDate is returned alongside a successful mutation whose due date
// already lies in the past. It never blocks the write.
const WarnPastDueDate = "due date is in the past"

// ProjectStore is the slice of project persistence the task service needs.
type ProjectStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	UpdateTaskCounters(ctx context.Context, id uuid.UUID, total, completed int64) error
}

// UserStore resolves acting users and assignees.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// ActivityRecorder appends audit entries.
type ActivityRecorder interface {
	Create(ctx context.Context, entry *activity.Entry) error
}

// EventPublisher pushes board events and invalidates report caches.
type EventPublisher interface {
	PublishBoardEvent(ctx context.Context, event *events.BoardEvent) error
	DeletePattern(ctx context.Context, pattern string) error
}

type CreateTaskInput struct {
	ProjectID      uuid.UUID
	Title          string
	Description    string
	AssignedToID   *uuid.UUID
	Status         TaskStatus
	Priority       TaskPriority
	DueDate        *time.Time
	EstimatedHours float64
	Tags           []string
}

// UpdateTaskInput carries partial updates; nil means "leave unchanged".
// ClearAssignee and ClearDueDate exist because a nil pointer cannot express
// "set to null".
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	AssignedToID   *uuid.UUID
	ClearAssignee  bool
	Status         *TaskStatus
	Priority       *TaskPriority
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// fields lists the update request keys present in the input, for the
// capability resolution. Names match the update request JSON keys.
func (in UpdateTaskInput) fields() []string {
	var fs []string
	if in.Title != nil {
		fs = append(fs, "title")
	}
	if in.Description != nil {
		fs = append(fs, "description")
	}
	if in.AssignedToID != nil || in.ClearAssignee {
		fs = append(fs, "assigned_to_id")
	}
	if in.Status != nil {
		fs = append(fs, "status")
	}
	if in.Priority != nil {
		fs = append(fs, "priority")
	}
	if in.DueDate != nil || in.ClearDueDate {
		fs = append(fs, "due_date")
	}
	if in.EstimatedHours != nil {
		fs = append(fs, "estimated_hours")
	}
	if in.ActualHours != nil {
		fs = append(fs, "actual_hours")
	}
	if in.Tags != nil {
		fs = append(fs, "tags")
	}
	return fs
}

// Service interface
type Service interface {
	CreateTask(ctx context.Context, actorID uuid.UUID, input CreateTaskInput) (*Task, []string, error)
	GetTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, actorID uuid.UUID, filter TaskFilter) ([]Task, int64, error)
	UpdateTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateTaskInput) (*Task, []string, error)
	DeleteTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
	AssignTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, assigneeID *uuid.UUID) (*Task, error)
	LogTime(ctx context.Context, actorID uuid.UUID, id uuid.UUID, hours float64) (*Task, error)
	CommentTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, text string) error
}

type service struct {
	repo      TaskRepository
	projects  ProjectStore
	users     UserStore
	recorder  ActivityRecorder
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo TaskRepository, projects ProjectStore, users UserStore, recorder ActivityRecorder, publisher EventPublisher, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		projects:  projects,
		users:     users,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *service) actor(ctx context.Context, actorID uuid.UUID) (permission.Actor, error) {
	u, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return permission.Actor{}, ErrNotAuthorized
	}
	return permission.Actor{ID: u.ID, Role: u.Role}, nil
}

func projectContext(p *project.Project) permission.ProjectContext {
	return permission.ProjectContext{OwnerID: p.OwnerID, TeamMemberIDs: p.TeamMemberIDs}
}

func taskContext(t *Task) permission.TaskContext {
	return permission.TaskContext{CreatorID: t.CreatedBy, AssignedToID: t.AssignedToID}
}

func (s *service) CreateTask(ctx context.Context, actorID uuid.UUID, input CreateTaskInput) (*Task, []string, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !permission.CanView(actor, projectContext(p)) {
		return nil, nil, ErrNotAuthorized
	}

	if input.Status == "" {
		input.Status = TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = TaskPriorityMedium
	}
	if input.AssignedToID != nil && !p.IsMember(*input.AssignedToID) {
		return nil, nil, ErrInvalidInput
	}
	if input.EstimatedHours < 0 {
		return nil, nil, ErrInvalidInput
	}

	now := time.Now().UTC()
	t := &Task{
		ID:             uuid.New(),
		ProjectID:      input.ProjectID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		AssignedToID:   input.AssignedToID,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Tags:           input.Tags,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Status == TaskStatusDone {
		t.CompletedAt = &now
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if t.DueDate != nil && t.DueDate.Before(now) {
		warnings = append(warnings, WarnPastDueDate)
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, nil, err
	}

	s.refreshCounters(ctx, actor.ID, t.ProjectID)
	s.record(ctx, actor.ID, activity.ActionCreate, t.ID, nil, map[string]interface{}{
		"title":      t.Title,
		"project_id": t.ProjectID.String(),
	})
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "task_created")

	return t, warnings, nil
}

func (s *service) GetTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*Task, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if !permission.CanView(actor, projectContext(p)) {
		return nil, ErrNotAuthorized
	}
	return t, nil
}

func (s *service) ListTasks(ctx context.Context, actorID uuid.UUID, filter TaskFilter) ([]Task, int64, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	if filter.ProjectID != nil {
		p, err := s.projects.FindByID(ctx, *filter.ProjectID)
		if err != nil {
			return nil, 0, err
		}
		if !permission.CanView(actor, projectContext(p)) {
			return nil, 0, ErrNotAuthorized
		}
		return s.repo.FindAll(ctx, filter)
	}

	// Without a project scope the listing is restricted to the caller's own
	// tasks unless they are an admin.
	if actor.Role != user.RoleAdmin {
		filter.AssignedToID = &actor.ID
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateTaskInput) (*Task, []string, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	decision := permission.ResolveTaskUpdate(actor, taskContext(t), projectContext(p), input.fields())
	if !decision.Allowed {
		return nil, nil, ErrNotAuthorized
	}

	now := time.Now().UTC()
	prevStatus := t.Status
	prevAssignee := t.AssignedToID
	changes := map[string]interface{}{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title != t.Title {
			changes["title"] = map[string]string{"from": t.Title, "to": title}
			t.Title = title
		}
	}
	if input.Description != nil && *input.Description != t.Description {
		changes["description"] = true
		t.Description = *input.Description
	}
	if input.ClearAssignee {
		if t.AssignedToID != nil {
			changes["assigned_to_id"] = nil
			t.AssignedToID = nil
		}
	} else if input.AssignedToID != nil {
		if !p.IsMember(*input.AssignedToID) {
			return nil, nil, ErrInvalidInput
		}
		if t.AssignedToID == nil || *t.AssignedToID != *input.AssignedToID {
			changes["assigned_to_id"] = input.AssignedToID.String()
			t.AssignedToID = input.AssignedToID
		}
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, nil, ErrInvalidInput
		}
		if *input.Status != t.Status {
			changes["status"] = map[string]string{"from": string(t.Status), "to": string(*input.Status)}
			t.Status = *input.Status
		}
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, nil, ErrInvalidInput
		}
		if *input.Priority != t.Priority {
			changes["priority"] = map[string]string{"from": string(t.Priority), "to": string(*input.Priority)}
			t.Priority = *input.Priority
		}
	}
	if input.ClearDueDate {
		if t.DueDate != nil {
			changes["due_date"] = nil
			t.DueDate = nil
		}
	} else if input.DueDate != nil {
		changes["due_date"] = input.DueDate.UTC().Format(time.RFC3339)
		t.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		if *input.EstimatedHours < 0 {
			return nil, nil, ErrInvalidInput
		}
		changes["estimated_hours"] = *input.EstimatedHours
		t.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		if *input.ActualHours < 0 {
			return nil, nil, ErrInvalidInput
		}
		changes["actual_hours"] = *input.ActualHours
		t.ActualHours = *input.ActualHours
	}
	if input.Tags != nil {
		changes["tags"] = input.Tags
		t.Tags = input.Tags
	}

	// CompletedAt follows the status: stamped on entering done, cleared on
	// leaving it.
	if t.Status == TaskStatusDone && prevStatus != TaskStatusDone {
		t.CompletedAt = &now
	} else if t.Status != TaskStatusDone && prevStatus == TaskStatusDone {
		t.CompletedAt = nil
	}

	var warnings []string
	if t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusDone {
		warnings = append(warnings, WarnPastDueDate)
	}

	t.UpdatedAt = now
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, nil, err
	}

	if t.Status != prevStatus {
		s.refreshCounters(ctx, actor.ID, t.ProjectID)
	}

	action := activity.ActionUpdate
	if t.Status == TaskStatusDone && prevStatus != TaskStatusDone {
		action = activity.ActionComplete
	} else if !assigneeEqual(prevAssignee, t.AssignedToID) {
		action = activity.ActionAssign
	}
	s.record(ctx, actor.ID, action, t.ID, changes, nil)
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "task_updated")

	return t, warnings, nil
}

func (s *service) DeleteTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !permission.CanDeleteTask(actor, taskContext(t)) {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.refreshCounters(ctx, actor.ID, t.ProjectID)
	s.record(ctx, actor.ID, activity.ActionDelete, t.ID, nil, map[string]interface{}{
		"title":      t.Title,
		"project_id": t.ProjectID.String(),
	})
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "task_deleted")
	return nil
}

// AssignTask reassigns the task, or unassigns it when assigneeID is nil.
// Requires the same capability as a full update.
func (s *service) AssignTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, assigneeID *uuid.UUID) (*Task, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	decision := permission.ResolveTaskUpdate(actor, taskContext(t), projectContext(p), []string{"assigned_to_id"})
	if !decision.Allowed {
		return nil, ErrNotAuthorized
	}

	if assigneeID != nil && !p.IsMember(*assigneeID) {
		return nil, ErrInvalidInput
	}
	if assigneeEqual(t.AssignedToID, assigneeID) {
		return t, nil
	}

	t.AssignedToID = assigneeID
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	meta := map[string]interface{}{"project_id": t.ProjectID.String()}
	if assigneeID != nil {
		meta["assignee_id"] = assigneeID.String()
	}
	s.record(ctx, actor.ID, activity.ActionAssign, t.ID, nil, meta)
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "task_assigned")
	return t, nil
}

// LogTime adds worked hours to the task's actual hours total.
func (s *service) LogTime(ctx context.Context, actorID uuid.UUID, id uuid.UUID, hours float64) (*Task, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if hours <= 0 {
		return nil, ErrInvalidInput
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	decision := permission.ResolveTaskUpdate(actor, taskContext(t), projectContext(p), []string{"actual_hours"})
	if !decision.Allowed {
		return nil, ErrNotAuthorized
	}

	t.ActualHours += hours
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.record(ctx, actor.ID, activity.ActionUpdate, t.ID, map[string]interface{}{
		"actual_hours": map[string]float64{"added": hours, "total": t.ActualHours},
	}, nil)
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "time_logged")
	return t, nil
}

// CommentTask appends a comment entry to the activity log. Comments live only
// in the log; there is no separate comments table.
func (s *service) CommentTask(ctx context.Context, actorID uuid.UUID, id uuid.UUID, text string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" || len(text) > commentMaxLen {
		return ErrInvalidInput
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		return err
	}
	if !permission.CanView(actor, projectContext(p)) {
		return ErrNotAuthorized
	}

	s.record(ctx, actor.ID, activity.ActionComment, t.ID, nil, map[string]interface{}{
		"comment":    text,
		"project_id": t.ProjectID.String(),
	})
	s.publish(ctx, actor.ID, t.ProjectID, t.ID, "task_commented")
	return nil
}

// refreshCounters recomputes the project's denormalized counters from a live
// count. Full recompute, not increment, so concurrent mutations converge on
// the next write. Failures are logged, not returned; the next mutation heals
// the counters.
func (s *service) refreshCounters(ctx context.Context, actorID, projectID uuid.UUID) {
	total, done, err := s.repo.CountByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to count tasks for counter refresh", zap.Error(err), zap.String("project_id", projectID.String()))
		return
	}
	if err := s.projects.UpdateTaskCounters(ctx, projectID, total, done); err != nil {
		s.logger.Error("Failed to update project task counters", zap.Error(err), zap.String("project_id", projectID.String()))
		return
	}

	event := &events.BoardEvent{
		EventType: events.BoardEventCounterRefresh,
		UserID:    actorID,
		ProjectID: projectID,
		EntityID:  projectID,
		Timestamp: time.Now().UTC(),
		Details: map[string]interface{}{
			"total_tasks":     total,
			"completed_tasks": done,
		},
	}
	if err := s.publisher.PublishBoardEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish counter refresh event", zap.Error(err))
	}
}

func (s *service) record(ctx context.Context, actorID uuid.UUID, action activity.Action, entityID uuid.UUID, changes map[string]interface{}, metadata map[string]interface{}) {
	entry := &activity.Entry{
		UserID:     actorID,
		Action:     action,
		EntityType: activity.EntityTask,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if len(changes) > 0 {
		if b, err := json.Marshal(changes); err == nil {
			entry.Changes = b
		}
	}
	if err := s.recorder.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record task activity", zap.Error(err), zap.String("task_id", entityID.String()))
	}
}

func (s *service) publish(ctx context.Context, actorID, projectID, taskID uuid.UUID, action string) {
	event := &events.BoardEvent{
		EventType: events.BoardEventCacheInvalidate,
		UserID:    actorID,
		ProjectID: projectID,
		EntityID:  taskID,
		Timestamp: time.Now().UTC(),
		Details:   map[string]interface{}{"action": action},
	}
	if err := s.publisher.PublishBoardEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish board event", zap.Error(err))
	}
	if err := s.publisher.DeletePattern(ctx, "reports:*"); err != nil {
		s.logger.Error("Failed to invalidate report cache", zap.Error(err))
	}
}

func assigneeEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
