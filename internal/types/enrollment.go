package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentEnrolled  = "ENROLLED"
	EnrollmentDropped   = "DROPPED"
	EnrollmentCompleted = "COMPLETED"
)

type Enrollment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_enrollment_student_section,unique" json:"student_id"`
	Student   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	SectionID uuid.UUID      `gorm:"type:uuid;not null;index:idx_enrollment_student_section,unique" json:"section_id"`
	Status    string         `gorm:"column:status;not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }
