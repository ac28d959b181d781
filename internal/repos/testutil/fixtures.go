package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/types"
)

// SeedUser inserts a user with a unique username and email.
func SeedUser(tb testing.TB, tx *gorm.DB) *types.User {
	tb.Helper()

	suffix := uuid.NewString()[:8]
	user := &types.User{
		Username:  "student_" + suffix,
		Password:  "not-a-real-hash",
		FirstName: "Test",
		LastName:  "Student",
		Email:     fmt.Sprintf("student_%s@example.com", suffix),
		Role:      types.RoleUser,
	}
	if err := tx.Create(user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedCourse inserts a course owned by the given author username.
func SeedCourse(tb testing.TB, tx *gorm.DB, author string) *types.Course {
	tb.Helper()

	course := &types.Course{
		Title:       "Course " + uuid.NewString()[:8],
		Author:      author,
		Description: "seeded course",
	}
	if err := tx.Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return course
}

// SeedLecture inserts a lecture lesson at the next position.
func SeedLecture(tb testing.TB, tx *gorm.DB, courseID uuid.UUID, position int) *types.Lesson {
	tb.Helper()

	lesson := &types.Lesson{
		CourseID: courseID,
		Title:    "Lecture " + uuid.NewString()[:8],
		Type:     types.LessonTypeLecture,
		Position: position,
	}
	if err := tx.Create(lesson).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	return lesson
}

// SeedPractical inserts a practical lesson with the given answer and
// attempt budget.
func SeedPractical(tb testing.TB, tx *gorm.DB, courseID uuid.UUID, answer string, maxAttempts, position int) *types.Lesson {
	tb.Helper()

	question := "What is the answer?"
	lesson := &types.Lesson{
		CourseID:    courseID,
		Title:       "Practical " + uuid.NewString()[:8],
		Type:        types.LessonTypePractical,
		Question:    &question,
		Answer:      &answer,
		MaxAttempts: &maxAttempts,
		Position:    position,
	}
	if err := tx.Create(lesson).Error; err != nil {
		tb.Fatalf("seed practical: %v", err)
	}
	return lesson
}

// SeedProgress inserts an in-progress row for a material.
func SeedProgress(tb testing.TB, tx *gorm.DB, userID, materialID uuid.UUID, materialType types.MaterialType, attempts *int) *types.Progress {
	tb.Helper()

	progress := &types.Progress{
		UserID:            userID,
		MaterialID:        materialID,
		MaterialType:      materialType,
		Status:            types.ProgressInProgress,
		AttemptsRemaining: attempts,
	}
	if err := tx.Create(progress).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return progress
}
