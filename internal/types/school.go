package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// School is the tenant boundary. Every pipeline entity hangs off a school.
type School struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	Subdomain string         `gorm:"uniqueIndex;column:subdomain" json:"subdomain"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (School) TableName() string { return "school" }
