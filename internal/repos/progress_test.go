package repos_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/repos/testutil"
	"github.com/eduforge/eduforge-backend/internal/types"
)

func TestProgressRepoCreateAndGet(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	course := testutil.SeedCourse(t, tx, user.Username)
	lesson := testutil.SeedPractical(t, tx, course.ID, "42", 3, 0)

	repo := repos.NewProgressRepo(tx, testutil.Logger())

	attempts := 3
	created, err := repo.Create(ctx, tx, []*types.Progress{{
		UserID:            user.ID,
		MaterialID:        lesson.ID,
		MaterialType:      types.MaterialTypeLesson,
		Status:            types.ProgressInProgress,
		AttemptsRemaining: &attempts,
	}})
	if err != nil {
		t.Fatalf("create progress: %v", err)
	}

	got, err := repo.GetByUserAndMaterial(ctx, tx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if got.ID != created[0].ID {
		t.Fatalf("got progress %s, want %s", got.ID, created[0].ID)
	}
	if got.AttemptsRemaining == nil || *got.AttemptsRemaining != 3 {
		t.Fatalf("attempts_remaining = %v, want 3", got.AttemptsRemaining)
	}
}

func TestProgressRepoDuplicateIsConflict(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	course := testutil.SeedCourse(t, tx, user.Username)
	testutil.SeedProgress(t, tx, user.ID, course.ID, types.MaterialTypeCourse, nil)

	repo := repos.NewProgressRepo(tx, testutil.Logger())

	_, err := repo.Create(ctx, tx, []*types.Progress{{
		UserID:       user.ID,
		MaterialID:   course.ID,
		MaterialType: types.MaterialTypeCourse,
		Status:       types.ProgressInProgress,
	}})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate create returned %v, want Conflict", err)
	}
}

func TestProgressRepoAppendAnswer(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	course := testutil.SeedCourse(t, tx, user.Username)
	lesson := testutil.SeedPractical(t, tx, course.ID, "42", 3, 0)
	attempts := 3
	progress := testutil.SeedProgress(t, tx, user.ID, lesson.ID, types.MaterialTypeLesson, &attempts)

	repo := repos.NewProgressRepo(tx, testutil.Logger())

	for _, answer := range []string{"40", "41", "42"} {
		if err := repo.AppendAnswer(ctx, tx, progress.ID, answer); err != nil {
			t.Fatalf("append answer %q: %v", answer, err)
		}
	}

	got, err := repo.GetByUserAndMaterial(ctx, tx, user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}

	var answers []string
	if err := json.Unmarshal(got.UserAnswers, &answers); err != nil {
		t.Fatalf("decode user_answers: %v", err)
	}
	want := []string{"40", "41", "42"}
	if len(answers) != len(want) {
		t.Fatalf("user_answers = %v, want %v", answers, want)
	}
	for i := range want {
		if answers[i] != want[i] {
			t.Fatalf("user_answers[%d] = %q, want %q", i, answers[i], want[i])
		}
	}
}

func TestProgressRepoSetStatus(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	course := testutil.SeedCourse(t, tx, user.Username)
	lecture := testutil.SeedLecture(t, tx, course.ID, 0)
	progress := testutil.SeedProgress(t, tx, user.ID, lecture.ID, types.MaterialTypeLesson, nil)

	repo := repos.NewProgressRepo(tx, testutil.Logger())

	now := time.Now()
	if err := repo.SetStatus(ctx, tx, progress.ID, types.ProgressCompleted, &now); err != nil {
		t.Fatalf("set status: %v", err)
	}

	got, err := repo.GetByUserAndMaterial(ctx, tx, user.ID, lecture.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if got.Status != types.ProgressCompleted {
		t.Fatalf("status = %q, want %q", got.Status, types.ProgressCompleted)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
}

func TestProgressRepoGetMissingIsNotFound(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	course := testutil.SeedCourse(t, tx, user.Username)

	repo := repos.NewProgressRepo(tx, testutil.Logger())

	_, err := repo.GetByUserAndMaterial(ctx, tx, user.ID, course.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("missing progress returned %v, want NotFound", err)
	}
}
