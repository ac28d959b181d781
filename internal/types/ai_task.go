package types

import (
	"time"

	"github.com/google/uuid"
)

// AiTask is a tutor-generated practice task bound to one user.
type AiTask struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Task   string    `gorm:"type:text;not null;column:task" json:"task"`
	// Answer is the canonical solution, kept server-side.
	Answer    string         `gorm:"type:text;not null;column:answer" json:"-"`
	Status    ProgressStatus `gorm:"not null;default:'in_progress';column:status" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AiTask) TableName() string { return "ai_task" }
