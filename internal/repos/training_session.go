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

type TrainingSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.TrainingSession) (*types.TrainingSession, error)
	List(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, limit int) ([]*types.TrainingSession, error)
	ActivateExclusive(ctx context.Context, tx *gorm.DB, id uuid.UUID, modelType string) error
}

type trainingSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingSessionRepo(db *gorm.DB, baseLog *logger.Logger) TrainingSessionRepo {
	return &trainingSessionRepo{db: db, log: baseLog.With("repo", "TrainingSessionRepo")}
}

func (r *trainingSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.TrainingSession) (*types.TrainingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if session == nil {
		return nil, errors.New("nil training session")
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *trainingSessionRepo) List(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, limit int) ([]*types.TrainingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.TrainingSession
	q := transaction.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if schoolID != uuid.Nil {
		q = q.Where("school_id = ?", schoolID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActivateExclusive marks the session active and retires every other
// session of the same model type, so the audit trail always shows which
// training run produced the deployed model.
func (r *trainingSessionRepo) ActivateExclusive(ctx context.Context, tx *gorm.DB, id uuid.UUID, modelType string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	if err := transaction.WithContext(ctx).
		Model(&types.TrainingSession{}).
		Where("model_type = ? AND id <> ? AND is_active = ?", modelType, id, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.TrainingSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":   true,
			"deployed_at": now,
			"updated_at":  now,
		}).Error
}
