package project

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/events"
	"github.com/Youngermaster/taskhub/internal/domain/permission"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	nameMinLen        = 3
	nameMaxLen        = 100
	descriptionMaxLen = 500
)

// UserStore is the read access to user accounts the service needs.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// TaskCounter counts live tasks for a project. Satisfied by the task
// repository; hard delete checks the live count, not the cached one.
type TaskCounter interface {
	CountByProject(ctx context.Context, projectID uuid.UUID) (total int64, done int64, err error)
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

type CreateProjectInput struct {
	Name          string
	Description   string
	TeamMemberIDs []uuid.UUID
	Status        ProjectStatus
	Tags          []string
	Priority      ProjectPriority
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
	Tags        []string
	Priority    *ProjectPriority
}

// Service interface
type Service interface {
	CreateProject(ctx context.Context, actorID uuid.UUID, input CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, actorID uuid.UUID, filter ProjectFilter) ([]Project, int64, error)
	UpdateProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateProjectInput) (*Project, error)
	RemoveProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID, hard bool) error
	AddTeamMember(ctx context.Context, actorID uuid.UUID, projectID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, actorID uuid.UUID, projectID, userID uuid.UUID) error
}

type service struct {
	repo      Repository
	users     UserStore
	tasks     TaskCounter
	recorder  ActivityRecorder
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo Repository, users UserStore, tasks TaskCounter, recorder ActivityRecorder, publisher EventPublisher, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		users:     users,
		tasks:     tasks,
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

func projectContext(p *Project) permission.ProjectContext {
	return permission.ProjectContext{OwnerID: p.OwnerID, TeamMemberIDs: p.TeamMemberIDs}
}

func (s *service) CreateProject(ctx context.Context, actorID uuid.UUID, input CreateProjectInput) (*Project, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if len(name) < nameMinLen || len(name) > nameMaxLen {
		return nil, ErrInvalidInput
	}
	if len(input.Description) > descriptionMaxLen {
		return nil, ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = ProjectStatusActive
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidInput
	}
	if input.Priority == "" {
		input.Priority = ProjectPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidInput
	}

	// Team members must exist; the creator is the owner and never doubles
	// as a team member.
	members := make(UUIDSlice, 0, len(input.TeamMemberIDs))
	for _, id := range input.TeamMemberIDs {
		if id == actor.ID || members.Contains(id) {
			continue
		}
		if _, err := s.users.FindByID(ctx, id); err != nil {
			return nil, ErrInvalidInput
		}
		members = append(members, id)
	}

	now := time.Now().UTC()
	p := &Project{
		ID:            uuid.New(),
		Name:          name,
		Description:   input.Description,
		OwnerID:       actor.ID,
		TeamMemberIDs: members,
		Status:        input.Status,
		Tags:          input.Tags,
		Metadata: Metadata{
			Priority: input.Priority,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, actor.ID, activity.ActionCreate, p.ID, nil, map[string]interface{}{
		"name": p.Name,
	})
	s.publish(ctx, actor.ID, p.ID, "project_created")

	return p, nil
}

func (s *service) GetProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*Project, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.CanView(actor, projectContext(p)) {
		return nil, ErrNotAuthorized
	}
	return p, nil
}

func (s *service) ListProjects(ctx context.Context, actorID uuid.UUID, filter ProjectFilter) ([]Project, int64, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	projects, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if actor.Role == user.RoleAdmin {
		return projects, total, nil
	}

	visible := make([]Project, 0, len(projects))
	for _, p := range projects {
		if permission.CanView(actor, projectContext(&p)) {
			visible = append(visible, p)
		}
	}
	return visible, int64(len(visible)), nil
}

func (s *service) UpdateProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateProjectInput) (*Project, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.CanModifyProject(actor, projectContext(p)) {
		return nil, ErrNotAuthorized
	}

	changes := map[string]interface{}{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < nameMinLen || len(name) > nameMaxLen {
			return nil, ErrInvalidInput
		}
		if name != p.Name {
			changes["name"] = map[string]string{"from": p.Name, "to": name}
			p.Name = name
		}
	}
	if input.Description != nil {
		if len(*input.Description) > descriptionMaxLen {
			return nil, ErrInvalidInput
		}
		if *input.Description != p.Description {
			changes["description"] = true
			p.Description = *input.Description
		}
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidInput
		}
		if *input.Status != p.Status {
			changes["status"] = map[string]string{"from": string(p.Status), "to": string(*input.Status)}
			p.Status = *input.Status
		}
	}
	if input.Tags != nil {
		changes["tags"] = input.Tags
		p.Tags = input.Tags
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidInput
		}
		if *input.Priority != p.Metadata.Priority {
			changes["priority"] = map[string]string{"from": string(p.Metadata.Priority), "to": string(*input.Priority)}
			p.Metadata.Priority = *input.Priority
		}
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, actor.ID, activity.ActionUpdate, p.ID, changes, nil)
	s.publish(ctx, actor.ID, p.ID, "project_updated")

	return p, nil
}

// RemoveProject archives the project when hard is false. A hard delete is
// rejected while any task still references the project; the live count is
// consulted, not the cached counters.
func (s *service) RemoveProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID, hard bool) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !permission.CanModifyProject(actor, projectContext(p)) {
		return ErrNotAuthorized
	}

	if !hard {
		p.Status = ProjectStatusArchived
		p.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		s.record(ctx, actor.ID, activity.ActionUpdate, p.ID, map[string]interface{}{
			"status": map[string]string{"to": string(ProjectStatusArchived)},
		}, nil)
		s.publish(ctx, actor.ID, p.ID, "project_archived")
		return nil
	}

	total, _, err := s.tasks.CountByProject(ctx, id)
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrHasTasks
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor.ID, activity.ActionDelete, p.ID, nil, map[string]interface{}{
		"name": p.Name,
	})
	s.publish(ctx, actor.ID, p.ID, "project_deleted")
	return nil
}

// AddTeamMember is idempotent: adding an existing member (or the owner) is a
// no-op, not an error.
func (s *service) AddTeamMember(ctx context.Context, actorID uuid.UUID, projectID, userID uuid.UUID) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !permission.CanModifyProject(actor, projectContext(p)) {
		return ErrNotAuthorized
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return ErrInvalidInput
	}

	if p.IsMember(userID) {
		return nil
	}

	p.TeamMemberIDs = append(p.TeamMemberIDs, userID)
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.record(ctx, actor.ID, activity.ActionUpdate, p.ID, map[string]interface{}{
		"member_added": userID.String(),
	}, nil)
	s.publish(ctx, actor.ID, p.ID, "member_added")
	return nil
}

func (s *service) RemoveTeamMember(ctx context.Context, actorID uuid.UUID, projectID, userID uuid.UUID) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !permission.CanModifyProject(actor, projectContext(p)) {
		return ErrNotAuthorized
	}

	if userID == p.OwnerID {
		return ErrOwnerRemoval
	}
	if !p.TeamMemberIDs.Contains(userID) {
		return nil
	}

	members := make(UUIDSlice, 0, len(p.TeamMemberIDs)-1)
	for _, m := range p.TeamMemberIDs {
		if m != userID {
			members = append(members, m)
		}
	}
	p.TeamMemberIDs = members
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.record(ctx, actor.ID, activity.ActionUpdate, p.ID, map[string]interface{}{
		"member_removed": userID.String(),
	}, nil)
	s.publish(ctx, actor.ID, p.ID, "member_removed")
	return nil
}

// record appends an audit entry. Failures are logged but do not fail the
// mutation; the primary write already happened (known gap, self-healing is
// not possible for audit entries).
func (s *service) record(ctx context.Context, actorID uuid.UUID, action activity.Action, entityID uuid.UUID, changes map[string]interface{}, metadata map[string]interface{}) {
	entry := &activity.Entry{
		UserID:     actorID,
		Action:     action,
		EntityType: activity.EntityProject,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if len(changes) > 0 {
		if b, err := json.Marshal(changes); err == nil {
			entry.Changes = b
		}
	}
	if err := s.recorder.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record project activity", zap.Error(err), zap.String("project_id", entityID.String()))
	}
}

func (s *service) publish(ctx context.Context, actorID, projectID uuid.UUID, action string) {
	event := &events.BoardEvent{
		EventType: events.BoardEventCacheInvalidate,
		UserID:    actorID,
		ProjectID: projectID,
		EntityID:  projectID,
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
