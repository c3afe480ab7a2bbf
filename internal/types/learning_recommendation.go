package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RecommendationStudyResource     = "STUDY_RESOURCE"
	RecommendationLearningStrategy  = "LEARNING_STRATEGY"
	RecommendationPeerCollaboration = "PEER_COLLABORATION"
)

type LearningRecommendation struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	StudentID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Student             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	RecommendationType  string         `gorm:"column:recommendation_type;not null;index" json:"recommendation_type"`
	Title               string         `gorm:"column:title;not null" json:"title"`
	Description         string         `gorm:"column:description" json:"description"`
	ExpectedImpact      float64        `gorm:"column:expected_impact;not null" json:"expected_impact"`
	TimeRequirement     string         `gorm:"column:time_requirement" json:"time_requirement"`
	DifficultyLevel     string         `gorm:"column:difficulty_level" json:"difficulty_level"`
	Resources           datatypes.JSON `gorm:"type:jsonb;column:resources" json:"resources"`
	IsCompleted         bool           `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`
	CompletedAt         *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	StudentFeedback     string         `gorm:"column:student_feedback" json:"student_feedback,omitempty"`
	EffectivenessRating *int           `gorm:"column:effectiveness_rating" json:"effectiveness_rating,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningRecommendation) TableName() string { return "learning_recommendation" }
