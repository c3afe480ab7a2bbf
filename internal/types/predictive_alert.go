package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AlertAcademicRisk   = "ACADEMIC_RISK"
	AlertEngagementDrop = "ENGAGEMENT_DROP"

	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// PredictiveAlert is immutable after creation except for acknowledgement
// and the retention sweep's deactivation.
type PredictiveAlert struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	StudentID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Student            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	AlertType          string         `gorm:"column:alert_type;not null;index" json:"alert_type"`
	Priority           string         `gorm:"column:priority;not null;index" json:"priority"`
	ConfidenceScore    float64        `gorm:"column:confidence_score;not null" json:"confidence_score"`
	PredictedOutcome   string         `gorm:"column:predicted_outcome" json:"predicted_outcome"`
	SupportingEvidence datatypes.JSON `gorm:"type:jsonb;column:supporting_evidence" json:"supporting_evidence"`
	RecommendedActions datatypes.JSON `gorm:"type:jsonb;column:recommended_actions" json:"recommended_actions"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	AcknowledgedBy     *uuid.UUID     `gorm:"type:uuid;column:acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt     *time.Time     `gorm:"column:acknowledged_at" json:"acknowledged_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PredictiveAlert) TableName() string { return "predictive_alert" }
