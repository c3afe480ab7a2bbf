package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignments []*types.Assignment) ([]*types.Assignment, error)
	ListForStudentSections(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignments []*types.Assignment) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(assignments) == 0 {
		return []*types.Assignment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListForStudentSections returns the assignments visible to a student
// through their active enrollments.
func (r *assignmentRepo) ListForStudentSections(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assignment
	if schoolID == uuid.Nil || studentID == uuid.Nil {
		return out, nil
	}
	sections := transaction.
		Model(&types.Enrollment{}).
		Select("section_id").
		Where("school_id = ? AND student_id = ? AND status = ?", schoolID, studentID, types.EnrollmentEnrolled)
	if err := transaction.WithContext(ctx).
		Where("school_id = ? AND section_id IN (?)", schoolID, sections).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
