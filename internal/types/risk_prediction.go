package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// RiskPrediction holds the current academic risk assessment for a student.
// Exactly one row exists per (school, student); recalculations upsert it.
type RiskPrediction struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID   uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_riskpred_school_student" json:"school_id"`
	StudentID  uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_riskpred_school_student" json:"student_id"`
	Student    *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	RiskScore  float64        `gorm:"column:risk_score;not null" json:"risk_score"`
	RiskLevel  string         `gorm:"column:risk_level;not null;index" json:"risk_level"`
	Confidence float64        `gorm:"column:confidence;not null" json:"confidence"`
	Factors    datatypes.JSON `gorm:"type:jsonb;column:factors" json:"factors"`
	Outcome    string         `gorm:"column:predicted_outcome" json:"predicted_outcome"`

	// Snapshot of the raw feature values the assessment was computed from.
	AttendanceRate           float64 `gorm:"column:attendance_rate" json:"attendance_rate"`
	AssignmentCompletionRate float64 `gorm:"column:assignment_completion_rate" json:"assignment_completion_rate"`
	AverageGrade             float64 `gorm:"column:average_grade" json:"average_grade"`
	LateSubmissionsRate      float64 `gorm:"column:late_submissions_rate" json:"late_submissions_rate"`
	ParticipationScore       float64 `gorm:"column:participation_score" json:"participation_score"`
	StudyTimeHours           float64 `gorm:"column:study_time_hours" json:"study_time_hours"`
	PreviousSemesterGPA      float64 `gorm:"column:previous_semester_gpa" json:"previous_semester_gpa"`
	CurrentSemesterGPA       float64 `gorm:"column:current_semester_gpa" json:"current_semester_gpa"`
	DaysSinceLastLogin       float64 `gorm:"column:days_since_last_login" json:"days_since_last_login"`

	IsActive    bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	LastUpdated time.Time      `gorm:"column:last_updated;not null;index" json:"last_updated"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RiskPrediction) TableName() string { return "risk_prediction" }
