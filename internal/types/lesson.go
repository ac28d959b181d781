package types

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title    string     `gorm:"not null;column:title" json:"title"`
	Type     LessonType `gorm:"not null;column:type" json:"type"`
	Desc     string     `gorm:"type:text;column:description" json:"desc"`
	// Question/Answer are present iff the lesson is practical.
	Question    *string `gorm:"column:question" json:"question,omitempty"`
	Answer      *string `gorm:"column:answer" json:"-"`
	MaxAttempts *int    `gorm:"column:max_attempts" json:"max_attempts,omitempty"`
	Level       int     `gorm:"not null;column:level" json:"level"`
	// Position is assigned as the count of existing lessons in the course
	// at insert time. Append-only, never reordered.
	Position           int       `gorm:"not null;column:position" json:"position"`
	NumPeopleCompleted int       `gorm:"not null;default:0;column:num_people_completed" json:"num_people_completed"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

// IsPractical reports whether the lesson carries a question/answer pair.
func (l *Lesson) IsPractical() bool {
	return l.Type == LessonTypePractical
}
