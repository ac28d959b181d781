package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Password       string    `gorm:"not null;column:password" json:"-"`
	FirstName      string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string    `gorm:"not null;column:last_name" json:"last_name"`
	Age            int       `gorm:"not null;column:age" json:"age"`
	Email          string    `gorm:"uniqueIndex;column:email" json:"email"`
	Phone          *string   `gorm:"uniqueIndex;column:phone" json:"phone,omitempty"`
	Role           Role      `gorm:"not null;default:'user';column:role" json:"role"`
	SuccessInARow  int       `gorm:"not null;default:0;column:success_in_a_row" json:"success_in_a_row"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }
