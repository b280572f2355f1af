package activity

import (
	"context"
	"time"

	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TimelineFilter bounds the timeline aggregation query.
type TimelineFilter struct {
	UserID   *uuid.UUID
	EntityID *uuid.UUID
	Since    time.Time
}

// DayActionRow is one (day, action) bucket as returned by the grouped query.
// Day is a UTC calendar date in YYYY-MM-DD form.
type DayActionRow struct {
	Day    string
	Action Action
	Count  int64
}

// Repository defines persistence for the activity log
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	CountByDayAndAction(ctx context.Context, filter TimelineFilter) ([]DayActionRow, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db  *connection.Database
	log *logrus.Logger
}

func NewRepository(db *connection.Database, log *logrus.Logger) Repository {
	return &repository{db: db, log: log}
}

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"action":      entry.Action,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"user_id":     entry.UserID,
	}).Debug("activity entry recorded")
	return nil
}

func (r *repository) CountByDayAndAction(ctx context.Context, filter TimelineFilter) ([]DayActionRow, error) {
	var rows []DayActionRow

	query := r.db.WithContext(ctx).Model(&Entry{}).
		Select("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, action, COUNT(*) AS count").
		Where("created_at >= ?", filter.Since)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	err := query.Group("day, action").Order("day DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Entry{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.log.WithFields(logrus.Fields{
			"deleted": result.RowsAffected,
			"cutoff":  cutoff,
		}).Info("expired activity entries removed")
	}
	return result.RowsAffected, nil
}
