package services_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/badges"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/repos/testutil"
	"github.com/eduforge/eduforge-backend/internal/services"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type progressEnv struct {
	tx           *gorm.DB
	userRepo     repos.UserRepo
	courseRepo   repos.CourseRepo
	lessonRepo   repos.LessonRepo
	progressRepo repos.ProgressRepo
	badgeRepo    repos.BadgeRepo
	service      services.ProgressService
}

func newProgressEnv(t *testing.T) *progressEnv {
	t.Helper()

	tx := testutil.Tx(t)
	log := testutil.Logger()
	env := &progressEnv{
		tx:           tx,
		userRepo:     repos.NewUserRepo(tx, log),
		courseRepo:   repos.NewCourseRepo(tx, log),
		lessonRepo:   repos.NewLessonRepo(tx, log),
		progressRepo: repos.NewProgressRepo(tx, log),
		badgeRepo:    repos.NewBadgeRepo(tx, log),
	}
	dispatcher := badges.NewDispatcher(env.userRepo, env.badgeRepo, nil, log)
	env.service = services.NewProgressService(
		tx, env.progressRepo, env.lessonRepo, env.courseRepo, env.userRepo, dispatcher, log)
	return env
}

func TestStartCourseIncrementsEnrollment(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, "someone-else")

	progress, err := env.service.StartMaterial(ctx, user.ID, course.ID, types.MaterialTypeCourse)
	if err != nil {
		t.Fatalf("start course: %v", err)
	}
	if progress.Status != types.ProgressInProgress {
		t.Fatalf("status = %q, want %q", progress.Status, types.ProgressInProgress)
	}

	got, err := env.courseRepo.GetByID(ctx, env.tx, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.NumPeopleEnrolled != 1 {
		t.Fatalf("num_people_enrolled = %d, want 1", got.NumPeopleEnrolled)
	}
}

func TestStartMaterialTwiceIsConflict(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, "someone-else")

	if _, err := env.service.StartMaterial(ctx, user.ID, course.ID, types.MaterialTypeCourse); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := env.service.StartMaterial(ctx, user.ID, course.ID, types.MaterialTypeCourse)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("second start returned %v, want Conflict", err)
	}

	got, err := env.courseRepo.GetByID(ctx, env.tx, course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.NumPeopleEnrolled != 1 {
		t.Fatalf("num_people_enrolled = %d after failed re-enroll, want 1", got.NumPeopleEnrolled)
	}
}

func TestStartPracticalSeedsAttempts(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lesson := testutil.SeedPractical(t, env.tx, course.ID, "42", 3, 0)

	progress, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson)
	if err != nil {
		t.Fatalf("start lesson: %v", err)
	}
	if progress.AttemptsRemaining == nil || *progress.AttemptsRemaining != 3 {
		t.Fatalf("attempts_remaining = %v, want 3", progress.AttemptsRemaining)
	}
}

func TestAnswerLessonStreakTrace(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)

	// Four practical lessons answered correct, correct, wrong, correct
	// should leave the streak trace 1, 2, 0, 1.
	submissions := []struct {
		answer     string
		wantStreak int
	}{
		{"right", 1},
		{"right", 2},
		{"wrong", 0},
		{"right", 1},
	}

	for i, sub := range submissions {
		lesson := testutil.SeedPractical(t, env.tx, course.ID, "right", 3, i)
		if _, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson); err != nil {
			t.Fatalf("start lesson %d: %v", i, err)
		}
		if _, err := env.service.AnswerLesson(ctx, user.ID, lesson.ID, sub.answer); err != nil {
			t.Fatalf("answer lesson %d: %v", i, err)
		}

		got, err := env.userRepo.GetByID(ctx, env.tx, user.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if got.SuccessInARow != sub.wantStreak {
			t.Fatalf("after submission %d: success_in_a_row = %d, want %d",
				i, got.SuccessInARow, sub.wantStreak)
		}
	}
}

func TestAnswerLessonSpendsAttempts(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lesson := testutil.SeedPractical(t, env.tx, course.ID, "right", 2, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lesson: %v", err)
	}

	result, err := env.service.AnswerLesson(ctx, user.ID, lesson.ID, "wrong")
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if result.Correct || result.AttemptsRemaining != 1 {
		t.Fatalf("first answer = %+v, want incorrect with 1 attempt left", result)
	}

	result, err = env.service.AnswerLesson(ctx, user.ID, lesson.ID, "still wrong")
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if result.AttemptsRemaining != 0 {
		t.Fatalf("attempts_remaining = %d, want 0", result.AttemptsRemaining)
	}

	_, err = env.service.AnswerLesson(ctx, user.ID, lesson.ID, "wrong again")
	if !apperr.IsKind(err, apperr.KindAttemptsExhausted) {
		t.Fatalf("exhausted answer returned %v, want AttemptsExhausted", err)
	}
}

func TestAnswerLessonExactMatch(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lesson := testutil.SeedPractical(t, env.tx, course.ID, "Answer", 3, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lesson: %v", err)
	}

	// Matching is case-sensitive with no trimming.
	result, err := env.service.AnswerLesson(ctx, user.ID, lesson.ID, "answer")
	if err != nil {
		t.Fatalf("lowercase answer: %v", err)
	}
	if result.Correct {
		t.Fatal("lowercase answer graded correct, want incorrect")
	}
	if result.AttemptsRemaining != 2 {
		t.Fatalf("attempts_remaining = %d after wrong answer, want 2", result.AttemptsRemaining)
	}

	result, err = env.service.AnswerLesson(ctx, user.ID, lesson.ID, "Answer")
	if err != nil {
		t.Fatalf("exact answer: %v", err)
	}
	if !result.Correct || !result.Completed {
		t.Fatalf("exact answer = %+v, want correct and completed", result)
	}
	// A correct submission spends no attempt.
	if result.AttemptsRemaining != 2 {
		t.Fatalf("attempts_remaining = %d after correct answer, want 2", result.AttemptsRemaining)
	}
}

func TestAnswerCorrectCompletesAndAwardsBadge(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lesson := testutil.SeedPractical(t, env.tx, course.ID, "right", 3, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lesson: %v", err)
	}

	result, err := env.service.AnswerLesson(ctx, user.ID, lesson.ID, "right")
	if err != nil {
		t.Fatalf("answer lesson: %v", err)
	}
	if got := result.Badges["Starter"]; got != badges.OutcomeSuccess {
		t.Fatalf("starter badge = %q, want %q", got, badges.OutcomeSuccess)
	}

	progress, err := env.service.GetProgress(ctx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if progress.Status != types.ProgressCompleted {
		t.Fatalf("status = %q, want %q", progress.Status, types.ProgressCompleted)
	}

	_, err = env.service.AnswerLesson(ctx, user.ID, lesson.ID, "right")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("answer after completion returned %v, want Conflict", err)
	}
}

func TestAnswerLectureIsInvalid(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lecture := testutil.SeedLecture(t, env.tx, course.ID, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lecture.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lecture: %v", err)
	}

	_, err := env.service.AnswerLesson(ctx, user.ID, lecture.ID, "anything")
	if !apperr.IsKind(err, apperr.KindInvalidOperation) {
		t.Fatalf("answering a lecture returned %v, want InvalidOperation", err)
	}
}

func TestCompleteLectureTwiceIsConflict(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lecture := testutil.SeedLecture(t, env.tx, course.ID, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lecture.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lecture: %v", err)
	}

	first, err := env.service.CompleteLesson(ctx, user.ID, lecture.ID)
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if first.Status != types.ProgressCompleted {
		t.Fatalf("status = %q, want %q", first.Status, types.ProgressCompleted)
	}

	if _, err := env.service.CompleteLesson(ctx, user.ID, lecture.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("second complete returned %v, want Conflict", err)
	}

	got, err := env.lessonRepo.GetByID(ctx, env.tx, lecture.ID)
	if err != nil {
		t.Fatalf("get lecture: %v", err)
	}
	if got.NumPeopleCompleted != 1 {
		t.Fatalf("num_people_completed = %d, want 1", got.NumPeopleCompleted)
	}

	// Completing a lecture never advances the streak.
	gotUser, err := env.userRepo.GetByID(ctx, env.tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotUser.SuccessInARow != 0 {
		t.Fatalf("success_in_a_row = %d after lecture, want 0", gotUser.SuccessInARow)
	}
}

func TestCompletePracticalIsInvalid(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	course := testutil.SeedCourse(t, env.tx, user.Username)
	lesson := testutil.SeedPractical(t, env.tx, course.ID, "right", 3, 0)

	if _, err := env.service.StartMaterial(ctx, user.ID, lesson.ID, types.MaterialTypeLesson); err != nil {
		t.Fatalf("start lesson: %v", err)
	}

	_, err := env.service.CompleteLesson(ctx, user.ID, lesson.ID)
	if !apperr.IsKind(err, apperr.KindInvalidOperation) {
		t.Fatalf("completing a practical returned %v, want InvalidOperation", err)
	}
}
