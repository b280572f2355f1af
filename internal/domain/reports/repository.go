package reports

import (
	"context"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
)

// StatusCountRow is one (status, count) bucket.
type StatusCountRow struct {
	Status task.TaskStatus
	Count  int64
}

// PriorityCountRow is one (priority, count) bucket.
type PriorityCountRow struct {
	Priority task.TaskPriority
	Count    int64
}

// AssigneeCountRow is one (assignee, count) bucket.
type AssigneeCountRow struct {
	AssignedToID uuid.UUID
	Count        int64
}

// HoursRow carries the hour aggregates for a project's task set. Averages are
// zero when the project has no tasks, enforced with COALESCE in the query.
type HoursRow struct {
	SumEstimated float64
	AvgEstimated float64
	SumActual    float64
	AvgActual    float64
}

// PerformanceRow is one assignee's raw aggregates before display-name joining
// and rounding. AvgCompletionSeconds and OnTimeRate are computed over the
// assignee's completed tasks only.
type PerformanceRow struct {
	AssignedToID         uuid.UUID
	TotalTasks           int64
	CompletedTasks       int64
	InProgressTasks      int64
	AvgCompletionSeconds float64
	OnTimeRate           float64
}

// PriorityStatusRow is one (priority, status, count) cell of the cross-tab.
type PriorityStatusRow struct {
	Priority task.TaskPriority
	Status   task.TaskStatus
	Count    int64
}

// Repository runs the read-only aggregation queries behind the reports.
type Repository interface {
	StatusCountsByAssignee(ctx context.Context, userID uuid.UUID) ([]StatusCountRow, error)
	PriorityCountsByAssignee(ctx context.Context, userID uuid.UUID) ([]PriorityCountRow, error)
	AvgCompletionSecondsByAssignee(ctx context.Context, userID uuid.UUID) (float64, error)
	OverdueCountByAssignee(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)

	StatusCountsByProject(ctx context.Context, projectID uuid.UUID) ([]StatusCountRow, error)
	AssigneeCountsByProject(ctx context.Context, projectID uuid.UUID) ([]AssigneeCountRow, error)
	HoursByProject(ctx context.Context, projectID uuid.UUID) (HoursRow, error)

	TeamPerformance(ctx context.Context, projectID *uuid.UUID) ([]PerformanceRow, error)
	PriorityStatusCounts(ctx context.Context) ([]PriorityStatusRow, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) StatusCountsByAssignee(ctx context.Context, userID uuid.UUID) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("status, COUNT(*) AS count").
		Where("assigned_to_id = ?", userID).
		Group("status").
		Find(&rows).Error
	return rows, err
}

func (r *repository) PriorityCountsByAssignee(ctx context.Context, userID uuid.UUID) ([]PriorityCountRow, error) {
	var rows []PriorityCountRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("priority, COUNT(*) AS count").
		Where("assigned_to_id = ?", userID).
		Group("priority").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AvgCompletionSecondsByAssignee(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("COALESCE(AVG(EXTRACT(EPOCH FROM completed_at - created_at)), 0)").
		Where("assigned_to_id = ? AND completed_at IS NOT NULL", userID).
		Scan(&avg).Error
	return avg, err
}

func (r *repository) OverdueCountByAssignee(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("assigned_to_id = ? AND due_date < ? AND status <> ?", userID, now, task.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (r *repository) StatusCountsByProject(ctx context.Context, projectID uuid.UUID) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("status, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("status").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AssigneeCountsByProject(ctx context.Context, projectID uuid.UUID) ([]AssigneeCountRow, error) {
	var rows []AssigneeCountRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("assigned_to_id, COUNT(*) AS count").
		Where("project_id = ? AND assigned_to_id IS NOT NULL", projectID).
		Group("assigned_to_id").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) HoursByProject(ctx context.Context, projectID uuid.UUID) (HoursRow, error) {
	var row HoursRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select(`COALESCE(SUM(estimated_hours), 0) AS sum_estimated,
			COALESCE(AVG(estimated_hours), 0) AS avg_estimated,
			COALESCE(SUM(actual_hours), 0) AS sum_actual,
			COALESCE(AVG(actual_hours), 0) AS avg_actual`).
		Where("project_id = ?", projectID).
		Scan(&row).Error
	return row, err
}

func (r *repository) TeamPerformance(ctx context.Context, projectID *uuid.UUID) ([]PerformanceRow, error) {
	var rows []PerformanceRow

	query := r.db.WithContext(ctx).Model(&task.Task{}).
		Select(`assigned_to_id,
			COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE status = 'done') AS completed_tasks,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress_tasks,
			COALESCE(AVG(EXTRACT(EPOCH FROM completed_at - created_at)) FILTER (WHERE completed_at IS NOT NULL), 0) AS avg_completion_seconds,
			COALESCE(AVG(CASE WHEN due_date IS NULL OR completed_at <= due_date THEN 1.0 ELSE 0.0 END) FILTER (WHERE completed_at IS NOT NULL), 0) AS on_time_rate`).
		Where("assigned_to_id IS NOT NULL")

	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	err := query.Group("assigned_to_id").
		Order("completed_tasks DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) PriorityStatusCounts(ctx context.Context) ([]PriorityStatusRow, error) {
	var rows []PriorityStatusRow
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Select("priority, status, COUNT(*) AS count").
		Where("status <> ?", task.TaskStatusDone).
		Group("priority, status").
		Find(&rows).Error
	return rows, err
}
