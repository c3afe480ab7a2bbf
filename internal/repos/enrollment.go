package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// StudentRef identifies one student within a tenant, used for bulk scans.
type StudentRef struct {
	SchoolID  uuid.UUID
	StudentID uuid.UUID
}

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error)
	ListActiveByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Enrollment, error)
	ListActiveStudentRefs(ctx context.Context, tx *gorm.DB, schoolID *uuid.UUID) ([]StudentRef, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(enrollments) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListActiveByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Enrollment
	if schoolID == uuid.Nil || studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("school_id = ? AND student_id = ? AND status = ?", schoolID, studentID, types.EnrollmentEnrolled).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListActiveStudentRefs(ctx context.Context, tx *gorm.DB, schoolID *uuid.UUID) ([]StudentRef, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Distinct("school_id", "student_id").
		Where("status = ?", types.EnrollmentEnrolled)
	if schoolID != nil && *schoolID != uuid.Nil {
		q = q.Where("school_id = ?", *schoolID)
	}
	var out []StudentRef
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
