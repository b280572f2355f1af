package reports

import (
	"errors"
	"math"

	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/google/uuid"
)

var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidInput  = errors.New("invalid input")
)

// DefaultTimelineDays is the trailing window for the activity timeline when
// the caller does not specify one.
const DefaultTimelineDays = 30

// UserStats summarizes the caller's assigned tasks. Status and priority maps
// carry every key even at zero count.
type UserStats struct {
	UserID            uuid.UUID                   `json:"user_id"`
	ByStatus          map[task.TaskStatus]int64   `json:"by_status"`
	ByPriority        map[task.TaskPriority]int64 `json:"by_priority"`
	TotalTasks        int64                       `json:"total_tasks"`
	AvgCompletionDays float64                     `json:"avg_completion_days"`
	OverdueCount      int64                       `json:"overdue_count"`
}

// AssigneeCount is a per-assignee task tally joined with the display name.
type AssigneeCount struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Count       int64     `json:"count"`
}

// HoursSummary carries sum and mean for an hours column across a task set.
type HoursSummary struct {
	Sum  float64 `json:"sum"`
	Mean float64 `json:"mean"`
}

// ProjectStats summarizes one project's task set.
type ProjectStats struct {
	ProjectID      uuid.UUID                 `json:"project_id"`
	TotalTasks     int64                     `json:"total_tasks"`
	ByStatus       map[task.TaskStatus]int64 `json:"by_status"`
	ByAssignee     []AssigneeCount           `json:"by_assignee"`
	CompletionRate float64                   `json:"completion_rate"`
	EstimatedHours HoursSummary              `json:"estimated_hours"`
	ActualHours    HoursSummary              `json:"actual_hours"`
}

// PerformanceEntry is one assignee's row in the team performance report.
// Completion averages and the on-time rate are computed only over that
// assignee's completed tasks.
type PerformanceEntry struct {
	UserID            uuid.UUID `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	TotalTasks        int64     `json:"total_tasks"`
	CompletedTasks    int64     `json:"completed_tasks"`
	InProgressTasks   int64     `json:"in_progress_tasks"`
	AvgCompletionDays float64   `json:"avg_completion_days"`
	OnTimeRate        float64   `json:"on_time_rate"`
}

// DayBucket is one calendar day's activity tally. Day is a UTC date in
// YYYY-MM-DD form; Actions carries every action kind even at zero count.
type DayBucket struct {
	Day     string                    `json:"day"`
	Actions map[activity.Action]int64 `json:"actions"`
	Total   int64                     `json:"total"`
}

// TimelineQuery bounds the activity timeline report.
type TimelineQuery struct {
	UserID   *uuid.UUID
	EntityID *uuid.UUID
	Days     int
}

// PriorityDistribution maps priority x status to a count of non-done tasks.
// All priority and status combinations are present, defaulting to zero.
type PriorityDistribution map[task.TaskPriority]map[task.TaskStatus]int64

// round1 rounds to one decimal, for day-based averages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimals, for rates and ratios.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// safeDiv returns a/b, or 0 when b is zero. Report ratios never surface NaN.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
