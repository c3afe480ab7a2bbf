package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrainingSession is an append-only audit record of a model training run.
// Only the activation flag is mutated after creation.
type TrainingSession struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	SessionName       string         `gorm:"column:session_name;not null" json:"session_name"`
	ModelType         string         `gorm:"column:model_type;not null;index" json:"model_type"`
	TrainingDataSize  int            `gorm:"column:training_data_size;not null" json:"training_data_size"`
	Accuracy          float64        `gorm:"column:accuracy" json:"accuracy"`
	ModelParameters   datatypes.JSON `gorm:"type:jsonb;column:model_parameters" json:"model_parameters"`
	FeatureImportance datatypes.JSON `gorm:"type:jsonb;column:feature_importance" json:"feature_importance"`
	UsedSyntheticData bool           `gorm:"column:used_synthetic_data;not null;default:false" json:"used_synthetic_data"`
	IsActive          bool           `gorm:"column:is_active;not null;default:false;index" json:"is_active"`
	DeployedAt        *time.Time     `gorm:"column:deployed_at" json:"deployed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TrainingSession) TableName() string { return "training_session" }
