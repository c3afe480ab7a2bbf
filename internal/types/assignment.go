package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	SectionID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"section_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	DueDate     time.Time      `gorm:"column:due_date;not null" json:"due_date"`
	TotalPoints float64        `gorm:"column:total_points;not null" json:"total_points"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignment" }
