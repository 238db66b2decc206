package database

import (
	"strings"
	"time"

	"github.com/winsuspend/winsuspend/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for transition events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new transition event into the database
func (r *Repository) Create(event *models.TransitionEvent) error {
	event.AppName = strings.ToLower(event.AppName)
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert transition event")
	}
	return nil
}

// GetEventsSince retrieves all transition events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.TransitionEvent, error) {
	var events []*models.TransitionEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query transition events")
	}

	return events, nil
}

// GetSuspendSummarySince returns time spent suspended per application since a
// given time. Only resume events carry a duration, so the aggregate counts
// those rows alone; suspend_count is the number of completed suspensions.
func (r *Repository) GetSuspendSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.TransitionEvent{}).
		Select("app_name, SUM(suspended_for) as suspended_seconds, COUNT(*) as suspend_count").
		Where("timestamp >= ? AND to_state = ?", since, "running").
		Where("from_state = ?", "stopped").
		Group("app_name").
		Order("suspended_seconds DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query suspend summary")
	}

	return summaries, nil
}

// GetLatest retrieves the most recent transition event
func (r *Repository) GetLatest() (*models.TransitionEvent, error) {
	var event models.TransitionEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.TransitionEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all transition events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM transition_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear transition events")
	}
	return nil
}
