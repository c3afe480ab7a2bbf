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

type LearningRecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recs []*types.LearningRecommendation) ([]*types.LearningRecommendation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningRecommendation, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID, includeCompleted bool) ([]*types.LearningRecommendation, error)
	PendingExists(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) (bool, error)
	Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, feedback string, rating *int) (*types.LearningRecommendation, error)
}

type learningRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) LearningRecommendationRepo {
	return &learningRecommendationRepo{db: db, log: baseLog.With("repo", "LearningRecommendationRepo")}
}

func (r *learningRecommendationRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.LearningRecommendation) ([]*types.LearningRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.LearningRecommendation{}, nil
	}
	for _, rec := range recs {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *learningRecommendationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var rec types.LearningRecommendation
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *learningRecommendationRepo) ListByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID, includeCompleted bool) ([]*types.LearningRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LearningRecommendation
	q := transaction.WithContext(ctx).
		Where("school_id = ? AND student_id = ?", schoolID, studentID)
	if !includeCompleted {
		q = q.Where("is_completed = ?", false)
	}
	if err := q.Order("expected_impact DESC, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningRecommendationRepo) PendingExists(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.LearningRecommendation{}).
		Where("school_id = ? AND student_id = ? AND is_completed = ?", schoolID, studentID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *learningRecommendationRepo) Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, feedback string, rating *int) (*types.LearningRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rec, err := r.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	now := time.Now()
	updates := map[string]interface{}{
		"is_completed": true,
		"completed_at": now,
		"updated_at":   now,
	}
	if feedback != "" {
		updates["student_feedback"] = feedback
	}
	if rating != nil {
		updates["effectiveness_rating"] = *rating
	}
	if err := transaction.WithContext(ctx).
		Model(&types.LearningRecommendation{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, transaction, id)
}
