package types

import (
	"time"

	"github.com/google/uuid"
)

// Badge is a write-once award fact per (user_id, badge_id); the unique
// index makes duplicate awards a constraint violation.
type Badge struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BadgeID         int       `gorm:"not null;index:idx_user_badge,unique;column:badge_id" json:"badge_id"`
	AchievementName string    `gorm:"not null;column:achievement_name" json:"achievement_name"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Badge) TableName() string { return "badge" }
