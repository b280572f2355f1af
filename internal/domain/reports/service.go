package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/permission"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/Youngermaster/taskhub/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const secondsPerDay = 86400

// ActivityStore is the slice of activity persistence the timeline needs.
type ActivityStore interface {
	CountByDayAndAction(ctx context.Context, filter activity.TimelineFilter) ([]activity.DayActionRow, error)
}

// ProjectStore resolves projects for visibility checks.
type ProjectStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

// UserStore resolves acting users and joins display names.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error)
}

// Cache is the report cache. A nil implementation is not allowed; use a
// no-op in tests.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service interface
type Service interface {
	GetUserStatistics(ctx context.Context, actorID uuid.UUID) (*UserStats, error)
	GetProjectStatistics(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID) (*ProjectStats, error)
	GetTeamPerformance(ctx context.Context, actorID uuid.UUID, projectID *uuid.UUID) ([]PerformanceEntry, error)
	GetActivityTimeline(ctx context.Context, actorID uuid.UUID, query TimelineQuery) ([]DayBucket, error)
	GetPriorityDistribution(ctx context.Context, actorID uuid.UUID) (PriorityDistribution, error)
}

type service struct {
	repo       Repository
	activities ActivityStore
	projects   ProjectStore
	users      UserStore
	cache      Cache
	logger     *zap.Logger
}

func NewService(repo Repository, activities ActivityStore, projects ProjectStore, users UserStore, c Cache, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		activities: activities,
		projects:   projects,
		users:      users,
		cache:      c,
		logger:     logger,
	}
}

func (s *service) actor(ctx context.Context, actorID uuid.UUID) (permission.Actor, error) {
	u, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return permission.Actor{}, ErrNotAuthorized
	}
	return permission.Actor{ID: u.ID, Role: u.Role}, nil
}

func (s *service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheNotFound) {
		s.logger.Warn("Report cache read failed", zap.Error(err), zap.String("key", key))
	}
	return false
}

func (s *service) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.SetJSON(ctx, key, value, 0); err != nil {
		s.logger.Warn("Report cache write failed", zap.Error(err), zap.String("key", key))
	}
}

// GetUserStatistics summarizes the caller's own assigned tasks. Status and
// priority maps always carry every key; the completion average is 0 when
// nothing is completed.
func (s *service) GetUserStatistics(ctx context.Context, actorID uuid.UUID) (*UserStats, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:user:%s", actor.ID)
	var cached UserStats
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	stats := &UserStats{
		UserID:     actor.ID,
		ByStatus:   make(map[task.TaskStatus]int64, 4),
		ByPriority: make(map[task.TaskPriority]int64, 3),
	}
	for _, st := range task.Statuses() {
		stats.ByStatus[st] = 0
	}
	for _, p := range task.Priorities() {
		stats.ByPriority[p] = 0
	}

	statusRows, err := s.repo.StatusCountsByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalTasks += row.Count
	}

	priorityRows, err := s.repo.PriorityCountsByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range priorityRows {
		stats.ByPriority[row.Priority] = row.Count
	}

	avgSeconds, err := s.repo.AvgCompletionSecondsByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	stats.AvgCompletionDays = round1(avgSeconds / secondsPerDay)

	overdue, err := s.repo.OverdueCountByAssignee(ctx, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	stats.OverdueCount = overdue

	s.toCache(ctx, key, stats)
	return stats, nil
}

// GetProjectStatistics summarizes one project's task set for a caller who can
// view the project.
func (s *service) GetProjectStatistics(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID) (*ProjectStats, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !permission.CanView(actor, permission.ProjectContext{OwnerID: p.OwnerID, TeamMemberIDs: p.TeamMemberIDs}) {
		return nil, ErrNotAuthorized
	}

	key := fmt.Sprintf("reports:project:%s", projectID)
	var cached ProjectStats
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	stats := &ProjectStats{
		ProjectID: projectID,
		ByStatus:  make(map[task.TaskStatus]int64, 4),
	}
	for _, st := range task.Statuses() {
		stats.ByStatus[st] = 0
	}

	statusRows, err := s.repo.StatusCountsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalTasks += row.Count
	}

	completed := stats.ByStatus[task.TaskStatusDone]
	stats.CompletionRate = round2(safeDiv(float64(completed), float64(stats.TotalTasks)))

	assigneeRows, err := s.repo.AssigneeCountsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(assigneeRows))
	for _, row := range assigneeRows {
		ids = append(ids, row.AssignedToID)
	}
	names, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats.ByAssignee = make([]AssigneeCount, 0, len(assigneeRows))
	for _, row := range assigneeRows {
		entry := AssigneeCount{UserID: row.AssignedToID, Count: row.Count}
		if u, ok := names[row.AssignedToID]; ok {
			entry.DisplayName = u.DisplayName()
		}
		stats.ByAssignee = append(stats.ByAssignee, entry)
	}

	hours, err := s.repo.HoursByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	stats.EstimatedHours = HoursSummary{Sum: hours.SumEstimated, Mean: round2(hours.AvgEstimated)}
	stats.ActualHours = HoursSummary{Sum: hours.SumActual, Mean: round2(hours.AvgActual)}

	s.toCache(ctx, key, stats)
	return stats, nil
}

// GetTeamPerformance ranks assignees by completed tasks, descending, with
// display name as the tie break. A project scope requires view access.
func (s *service) GetTeamPerformance(ctx context.Context, actorID uuid.UUID, projectID *uuid.UUID) ([]PerformanceEntry, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	scope := "all"
	if projectID != nil {
		p, err := s.projects.FindByID(ctx, *projectID)
		if err != nil {
			return nil, err
		}
		if !permission.CanView(actor, permission.ProjectContext{OwnerID: p.OwnerID, TeamMemberIDs: p.TeamMemberIDs}) {
			return nil, ErrNotAuthorized
		}
		scope = projectID.String()
	}

	key := fmt.Sprintf("reports:perf:%s", scope)
	var cached []PerformanceEntry
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.repo.TeamPerformance(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AssignedToID)
	}
	names, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]PerformanceEntry, 0, len(rows))
	for _, row := range rows {
		entry := PerformanceEntry{
			UserID:            row.AssignedToID,
			TotalTasks:        row.TotalTasks,
			CompletedTasks:    row.CompletedTasks,
			InProgressTasks:   row.InProgressTasks,
			AvgCompletionDays: round1(row.AvgCompletionSeconds / secondsPerDay),
			OnTimeRate:        round2(row.OnTimeRate),
		}
		if u, ok := names[row.AssignedToID]; ok {
			entry.DisplayName = u.DisplayName()
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CompletedTasks != entries[j].CompletedTasks {
			return entries[i].CompletedTasks > entries[j].CompletedTasks
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	s.toCache(ctx, key, entries)
	return entries, nil
}

// GetActivityTimeline buckets audit entries by UTC calendar day within a
// trailing window, newest day first. Each bucket carries every action kind.
// Filtering by another user's activity requires the admin role.
func (s *service) GetActivityTimeline(ctx context.Context, actorID uuid.UUID, query TimelineQuery) ([]DayBucket, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if query.UserID != nil && *query.UserID != actor.ID && actor.Role != user.RoleAdmin {
		return nil, ErrNotAuthorized
	}
	days := query.Days
	if days <= 0 {
		days = DefaultTimelineDays
	}
	if days > 365 {
		return nil, ErrInvalidInput
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.activities.CountByDayAndAction(ctx, activity.TimelineFilter{
		UserID:   query.UserID,
		EntityID: query.EntityID,
		Since:    since,
	})
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered newest day first; preserve that order while
	// folding per-action counts into day buckets.
	buckets := make([]DayBucket, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.Day]
		if !ok {
			actions := make(map[activity.Action]int64, 6)
			for _, a := range activity.Actions() {
				actions[a] = 0
			}
			buckets = append(buckets, DayBucket{Day: row.Day, Actions: actions})
			i = len(buckets) - 1
			index[row.Day] = i
		}
		buckets[i].Actions[row.Action] = row.Count
		buckets[i].Total += row.Count
	}
	return buckets, nil
}

// GetPriorityDistribution cross-tabulates non-done tasks by priority and
// status. Every priority and non-done status pair is present, defaulting to
// zero.
func (s *service) GetPriorityDistribution(ctx context.Context, actorID uuid.UUID) (PriorityDistribution, error) {
	if _, err := s.actor(ctx, actorID); err != nil {
		return nil, err
	}

	key := "reports:priority"
	var cached PriorityDistribution
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	dist := make(PriorityDistribution, 3)
	for _, p := range task.Priorities() {
		dist[p] = make(map[task.TaskStatus]int64, 3)
		for _, st := range task.Statuses() {
			if st == task.TaskStatusDone {
				continue
			}
			dist[p][st] = 0
		}
	}

	rows, err := s.repo.PriorityStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, ok := dist[row.Priority]; !ok {
			continue
		}
		dist[row.Priority][row.Status] = row.Count
	}

	s.toCache(ctx, key, dist)
	return dist, nil
}
