package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AICallLog audits every round trip to the AI collaborator.
type AICallLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CallType  string         `gorm:"not null;column:call_type" json:"call_type"`
	Model     string         `gorm:"not null;column:model" json:"model"`
	Prompt    string         `gorm:"type:text;column:prompt" json:"prompt"`
	Response  string         `gorm:"type:text;column:response" json:"response"`
	Success   bool           `gorm:"not null;column:success" json:"success"`
	Error     string         `gorm:"column:error" json:"error"`
	Usage     datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }
