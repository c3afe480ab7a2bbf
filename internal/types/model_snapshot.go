package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModelSnapshot is a versioned, immutable model artifact: classifier weights
// plus the feature scaler, serialized as JSON. The single active snapshot per
// model_key is the deployed model; activation swaps the pointer, never the
// row contents. No active snapshot means untrained.
type ModelSnapshot struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModelKey    string         `gorm:"column:model_key;not null;index:idx_modelsnap_key_version,unique" json:"model_key"`
	Version     int            `gorm:"column:version;not null;index:idx_modelsnap_key_version,unique" json:"version"`
	Active      bool           `gorm:"column:active;not null;default:false;index" json:"active"`
	ParamsJSON  datatypes.JSON `gorm:"type:jsonb;column:params_json" json:"params_json"`
	MetricsJSON datatypes.JSON `gorm:"type:jsonb;column:metrics_json" json:"metrics_json"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ModelSnapshot) TableName() string { return "model_snapshot" }
