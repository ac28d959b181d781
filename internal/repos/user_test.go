package repos_test

import (
	"context"
	"testing"

	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/repos/testutil"
)

func TestUserRepoStreak(t *testing.T) {
	tx := testutil.Tx(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx)
	repo := repos.NewUserRepo(tx, testutil.Logger())

	for i := 0; i < 3; i++ {
		if err := repo.IncrementStreak(ctx, tx, user.ID); err != nil {
			t.Fatalf("increment streak: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.SuccessInARow != 3 {
		t.Fatalf("success_in_a_row = %d, want 3", got.SuccessInARow)
	}

	if err := repo.ResetStreak(ctx, tx, user.ID); err != nil {
		t.Fatalf("reset streak: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.SuccessInARow != 0 {
		t.Fatalf("success_in_a_row = %d after reset, want 0", got.SuccessInARow)
	}
}
