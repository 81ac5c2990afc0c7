package repository

import (
	"context"
	"errors"

	"github.com/certifiedcode/memberguard/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

var ErrInvalidInput = errors.New("invalid input")

// ActivityRepository persists the activity log
type ActivityRepository interface {
	Record(ctx context.Context, activity *models.Activity) error
	// Recent returns the newest entries for an instance, newest first
	Recent(ctx context.Context, instanceID string, limit int) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Record(ctx context.Context, activity *models.Activity) error {
	if activity == nil || activity.InstanceID == "" || activity.Kind == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) Recent(ctx context.Context, instanceID string, limit int) ([]models.Activity, error) {
	if instanceID == "" {
		return nil, ErrInvalidInput
	}

	var out []models.Activity
	err := r.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order("created_at DESC, id DESC").
		Limit(ClampActivityLimit(limit)).
		Find(&out).Error
	return out, err
}

// ClampActivityLimit maps a requested page size into 1..MaxActivityLimit,
// using DefaultActivityLimit for zero or negative values.
func ClampActivityLimit(limit int) int {
	if limit <= 0 {
		return DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		return MaxActivityLimit
	}
	return limit
}
