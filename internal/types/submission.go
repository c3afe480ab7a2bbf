package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubmissionDraft     = "DRAFT"
	SubmissionSubmitted = "SUBMITTED"
	SubmissionGraded    = "GRADED"
)

type Submission struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	AssignmentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_submission_assignment_student,unique" json:"assignment_id"`
	Assignment   *Assignment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	StudentID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_submission_assignment_student,unique" json:"student_id"`
	Status       string         `gorm:"column:status;not null;index" json:"status"`
	PointsEarned *float64       `gorm:"column:points_earned" json:"points_earned,omitempty"`
	SubmittedAt  *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Submission) TableName() string { return "submission" }
