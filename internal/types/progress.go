package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Progress tracks one user's state for one material (course or lesson).
// At most one row exists per (user_id, material_id).
type Progress struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_material,unique" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	MaterialID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_material,unique" json:"material_id"`
	MaterialType MaterialType   `gorm:"not null;column:material_type" json:"material_type"`
	Status       ProgressStatus `gorm:"not null;default:'in_progress';column:status" json:"status"`
	// AttemptsRemaining is only set for practical lessons.
	AttemptsRemaining *int `gorm:"column:attempts_remaining" json:"attempts_remaining,omitempty"`
	// UserAnswers is an append-only JSON array of wrong submissions.
	UserAnswers datatypes.JSON `gorm:"type:jsonb;column:user_answers" json:"user_answers"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Progress) TableName() string { return "progress" }
