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

type ModelSnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.ModelSnapshot) (*types.ModelSnapshot, error)
	GetActiveByKey(ctx context.Context, tx *gorm.DB, modelKey string) (*types.ModelSnapshot, error)
	NextVersion(ctx context.Context, tx *gorm.DB, modelKey string) (int, error)
	ActivateExclusive(ctx context.Context, tx *gorm.DB, id uuid.UUID, modelKey string) error
}

type modelSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) ModelSnapshotRepo {
	return &modelSnapshotRepo{db: db, log: baseLog.With("repo", "ModelSnapshotRepo")}
}

func (r *modelSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.ModelSnapshot) (*types.ModelSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if snapshot == nil {
		return nil, errors.New("nil model snapshot")
	}
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *modelSnapshotRepo) GetActiveByKey(ctx context.Context, tx *gorm.DB, modelKey string) (*types.ModelSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snapshot types.ModelSnapshot
	err := transaction.WithContext(ctx).
		Where("model_key = ? AND active = ?", modelKey, true).
		Order("version DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *modelSnapshotRepo) NextVersion(ctx context.Context, tx *gorm.DB, modelKey string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.ModelSnapshot{}).
		Select("max(version)").
		Where("model_key = ?", modelKey).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// ActivateExclusive flips the deployed pointer: the given snapshot becomes
// active and every other version of the same key is retired, in one
// transaction so readers never observe zero or two active snapshots.
func (r *modelSnapshotRepo) ActivateExclusive(ctx context.Context, tx *gorm.DB, id uuid.UUID, modelKey string) error {
	run := func(transaction *gorm.DB) error {
		now := time.Now()
		if err := transaction.
			Model(&types.ModelSnapshot{}).
			Where("model_key = ? AND id <> ? AND active = ?", modelKey, id, true).
			Updates(map[string]interface{}{"active": false, "updated_at": now}).Error; err != nil {
			return err
		}
		return transaction.
			Model(&types.ModelSnapshot{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"active": true, "updated_at": now}).Error
	}
	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(run)
}
