package types

// LessonType distinguishes plain lecture material from practical lessons
// that carry a question/answer pair and an attempt budget.
type LessonType string

const (
	LessonTypeLecture   LessonType = "lecture"
	LessonTypePractical LessonType = "practical"
)

// MaterialType disambiguates what a progress row tracks.
type MaterialType string

const (
	MaterialTypeCourse MaterialType = "course"
	MaterialTypeLesson MaterialType = "lesson"
)

// ProgressStatus is the lifecycle of a progress row or an AI task.
// Completed is terminal.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
