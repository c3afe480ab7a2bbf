package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type RiskLevelCount struct {
	RiskLevel string
	Count     int64
}

type RiskPredictionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, prediction *types.RiskPrediction) (*types.RiskPrediction, error)
	GetActiveByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) (*types.RiskPrediction, error)
	CountActiveByLevel(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) ([]RiskLevelCount, error)
	ListActiveByLevel(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, levels []string) ([]*types.RiskPrediction, error)
	DeactivateOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type riskPredictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRiskPredictionRepo(db *gorm.DB, baseLog *logger.Logger) RiskPredictionRepo {
	return &riskPredictionRepo{db: db, log: baseLog.With("repo", "RiskPredictionRepo")}
}

// Upsert writes the assessment keyed on (school_id, student_id). A second
// recalculation for the same student overwrites the row in place, so the
// table always holds at most one row per student per tenant.
func (r *riskPredictionRepo) Upsert(ctx context.Context, tx *gorm.DB, prediction *types.RiskPrediction) (*types.RiskPrediction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if prediction == nil {
		return nil, errors.New("nil prediction")
	}
	if prediction.ID == uuid.Nil {
		prediction.ID = uuid.New()
	}
	now := time.Now()
	prediction.LastUpdated = now
	prediction.IsActive = true
	err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "school_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"risk_score", "risk_level", "confidence", "factors", "predicted_outcome",
			"attendance_rate", "assignment_completion_rate", "average_grade",
			"late_submissions_rate", "participation_score", "study_time_hours",
			"previous_semester_gpa", "current_semester_gpa", "days_since_last_login",
			"is_active", "last_updated", "updated_at",
		}),
	}).Create(prediction).Error
	if err != nil {
		return nil, err
	}
	return r.GetActiveByStudent(ctx, transaction, prediction.SchoolID, prediction.StudentID)
}

func (r *riskPredictionRepo) GetActiveByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) (*types.RiskPrediction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if schoolID == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	var prediction types.RiskPrediction
	err := transaction.WithContext(ctx).
		Where("school_id = ? AND student_id = ? AND is_active = ?", schoolID, studentID, true).
		First(&prediction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (r *riskPredictionRepo) CountActiveByLevel(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) ([]RiskLevelCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []RiskLevelCount
	if err := transaction.WithContext(ctx).
		Model(&types.RiskPrediction{}).
		Select("risk_level, count(*) as count").
		Where("school_id = ? AND is_active = ?", schoolID, true).
		Group("risk_level").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *riskPredictionRepo) ListActiveByLevel(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID, levels []string) ([]*types.RiskPrediction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RiskPrediction
	q := transaction.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true)
	if len(levels) > 0 {
		q = q.Where("risk_level IN ?", levels)
	}
	if err := q.Order("risk_score DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeactivateOlderThan implements the retention sweep: predictions whose
// last_updated predates the cutoff stop being served, but the rows stay
// for audit.
func (r *riskPredictionRepo) DeactivateOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.RiskPrediction{}).
		Where("is_active = ? AND last_updated < ?", true, cutoff).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
