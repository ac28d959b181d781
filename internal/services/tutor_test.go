package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/badges"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/repos/testutil"
	"github.com/eduforge/eduforge-backend/internal/services"
	"github.com/eduforge/eduforge-backend/internal/types"
)

type fakeAIClient struct {
	verdict    bool
	verdictErr error
	task       string
	answer     string
}

func (f *fakeAIClient) Ask(ctx context.Context, userID uuid.UUID, lessonContext, question string) (string, error) {
	return "an explanation", nil
}

func (f *fakeAIClient) GenerateTask(ctx context.Context, userID uuid.UUID, lessonTitle, lessonDesc string) (string, string, error) {
	return f.task, f.answer, nil
}

func (f *fakeAIClient) CompareAnswers(ctx context.Context, userID uuid.UUID, expected, given string) (bool, error) {
	if f.verdictErr != nil {
		return false, f.verdictErr
	}
	return f.verdict, nil
}

func newTutorEnv(t *testing.T, ai services.AIClient) (services.TutorService, *progressEnv) {
	t.Helper()

	env := newProgressEnv(t)
	log := testutil.Logger()
	taskRepo := repos.NewAiTaskRepo(env.tx, log)
	dispatcher := badges.NewDispatcher(env.userRepo, env.badgeRepo, nil, log)
	tutor := services.NewTutorService(
		env.tx, ai, taskRepo, env.lessonRepo, env.userRepo, dispatcher, log)
	return tutor, env
}

func seedTaskLesson(t *testing.T, env *progressEnv) *types.Lesson {
	t.Helper()
	course := testutil.SeedCourse(t, env.tx, "author")
	return testutil.SeedLecture(t, env.tx, course.ID, 0)
}

func TestGenerateTaskPersistsTask(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4"}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	lesson := seedTaskLesson(t, env)

	task, err := tutor.GenerateTask(ctx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("generate task: %v", err)
	}
	if task.Task != "Sum 2 and 2" {
		t.Fatalf("task = %q", task.Task)
	}
	if task.Status != types.ProgressInProgress {
		t.Fatalf("status = %q, want %q", task.Status, types.ProgressInProgress)
	}
}

func TestGenerateTaskUnknownLessonIsNotFound(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4"}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)

	_, err := tutor.GenerateTask(ctx, user.ID, uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown lesson returned %v, want NotFound", err)
	}
}

func TestAnswerTaskCorrectFeedsStreakAndBadges(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4", verdict: true}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	lesson := seedTaskLesson(t, env)
	task, err := tutor.GenerateTask(ctx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("generate task: %v", err)
	}

	result, err := tutor.AnswerTask(ctx, user.ID, task.ID, "four")
	if err != nil {
		t.Fatalf("answer task: %v", err)
	}
	if !result.Correct {
		t.Fatal("verdict = incorrect, want correct")
	}
	if got := result.Badges["Starter"]; got != badges.OutcomeSuccess {
		t.Fatalf("starter badge = %q, want %q", got, badges.OutcomeSuccess)
	}

	gotUser, err := env.userRepo.GetByID(ctx, env.tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotUser.SuccessInARow != 1 {
		t.Fatalf("success_in_a_row = %d, want 1", gotUser.SuccessInARow)
	}

	_, err = tutor.AnswerTask(ctx, user.ID, task.ID, "four")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("answer after completion returned %v, want Conflict", err)
	}
}

func TestAnswerTaskWrongResetsStreak(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4", verdict: false}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	if err := env.userRepo.IncrementStreak(ctx, env.tx, user.ID); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	lesson := seedTaskLesson(t, env)
	task, err := tutor.GenerateTask(ctx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("generate task: %v", err)
	}

	result, err := tutor.AnswerTask(ctx, user.ID, task.ID, "five")
	if err != nil {
		t.Fatalf("answer task: %v", err)
	}
	if result.Correct {
		t.Fatal("verdict = correct, want incorrect")
	}
	if len(result.Badges) != 0 {
		t.Fatalf("badges scanned on a wrong answer: %v", result.Badges)
	}

	gotUser, err := env.userRepo.GetByID(ctx, env.tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotUser.SuccessInARow != 0 {
		t.Fatalf("success_in_a_row = %d, want 0", gotUser.SuccessInARow)
	}
}

func TestAnswerTaskJudgeFailureLeavesStreakUntouched(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4",
		verdictErr: apperr.UpstreamJudge("model returned unparseable verdict")}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	user := testutil.SeedUser(t, env.tx)
	if err := env.userRepo.IncrementStreak(ctx, env.tx, user.ID); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	lesson := seedTaskLesson(t, env)
	task, err := tutor.GenerateTask(ctx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("generate task: %v", err)
	}

	_, err = tutor.AnswerTask(ctx, user.ID, task.ID, "four")
	if !apperr.IsKind(err, apperr.KindUpstreamJudge) {
		t.Fatalf("judge failure returned %v, want UpstreamJudge", err)
	}

	gotUser, err := env.userRepo.GetByID(ctx, env.tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if gotUser.SuccessInARow != 1 {
		t.Fatalf("success_in_a_row = %d, want 1", gotUser.SuccessInARow)
	}
}

func TestAnswerTaskOfAnotherUserIsNotFound(t *testing.T) {
	ai := &fakeAIClient{task: "Sum 2 and 2", answer: "4", verdict: true}
	tutor, env := newTutorEnv(t, ai)
	ctx := context.Background()

	owner := testutil.SeedUser(t, env.tx)
	other := testutil.SeedUser(t, env.tx)

	lesson := seedTaskLesson(t, env)
	task, err := tutor.GenerateTask(ctx, owner.ID, lesson.ID)
	if err != nil {
		t.Fatalf("generate task: %v", err)
	}

	_, err = tutor.AnswerTask(ctx, other.ID, task.ID, "four")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("foreign task answer returned %v, want NotFound", err)
	}
}
