package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type PredictiveAlertRepo interface {
	Create(ctx context.Context, tx *gorm.DB, alert *types.PredictiveAlert) (*types.PredictiveAlert, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PredictiveAlert, error)
	ActiveExists(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID, alertType string) (bool, error)
	ListActive(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, studentID *uuid.UUID) ([]*types.PredictiveAlert, error)
	Acknowledge(ctx context.Context, tx *gorm.DB, id, acknowledgedBy uuid.UUID) (*types.PredictiveAlert, error)
	DeactivateOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type predictiveAlertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictiveAlertRepo(db *gorm.DB, baseLog *logger.Logger) PredictiveAlertRepo {
	return &predictiveAlertRepo{db: db, log: baseLog.With("repo", "PredictiveAlertRepo")}
}

func (r *predictiveAlertRepo) Create(ctx context.Context, tx *gorm.DB, alert *types.PredictiveAlert) (*types.PredictiveAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if alert == nil {
		return nil, errors.New("nil alert")
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *predictiveAlertRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PredictiveAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var alert types.PredictiveAlert
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ActiveExists reports whether the student already has an unexpired alert of
// the given type, acknowledged or not. Orchestration uses this to keep alerts
// one-per-student-per-type.
func (r *predictiveAlertRepo) ActiveExists(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID, alertType string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.PredictiveAlert{}).
		Where("school_id = ? AND student_id = ? AND alert_type = ? AND is_active = ?", schoolID, studentID, alertType, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *predictiveAlertRepo) ListActive(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, studentID *uuid.UUID) ([]*types.PredictiveAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PredictiveAlert
	q := transaction.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true)
	if studentID != nil && *studentID != uuid.Nil {
		q = q.Where("student_id = ?", *studentID)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *predictiveAlertRepo) Acknowledge(ctx context.Context, tx *gorm.DB, id, acknowledgedBy uuid.UUID) (*types.PredictiveAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	alert, err := r.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, nil
	}
	if alert.AcknowledgedAt != nil {
		return alert, nil
	}
	now := time.Now()
	if err := transaction.WithContext(ctx).
		Model(&types.PredictiveAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": now,
			"updated_at":      now,
		}).Error; err != nil {
		return nil, err
	}
	alert.AcknowledgedBy = &acknowledgedBy
	alert.AcknowledgedAt = &now
	return alert, nil
}

func (r *predictiveAlertRepo) DeactivateOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.PredictiveAlert{}).
		Where("is_active = ? AND created_at < ?", true, cutoff).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
