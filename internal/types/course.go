package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title             string    `gorm:"not null;column:title" json:"title"`
	Author            string    `gorm:"not null;column:author" json:"author"`
	Description       string    `gorm:"column:description" json:"description"`
	Categories        string    `gorm:"not null;column:categories" json:"categories"`
	NumPeopleEnrolled int       `gorm:"not null;default:0;column:num_people_enrolled" json:"num_people_enrolled"`
	// NumLessons is a cached count, refreshed from the lesson table in the
	// same transaction that inserts a lesson.
	NumLessons int       `gorm:"not null;default:0;column:num_lessons" json:"num_lessons"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
