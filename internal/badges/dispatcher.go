package badges

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
)

// Outcome is the per-rule result of one scan.
type Outcome string

const (
	// OutcomeSuccess means the badge was granted on this scan.
	OutcomeSuccess Outcome = "success"
	// OutcomeAlreadyAwarded means the user already held the badge.
	OutcomeAlreadyAwarded Outcome = "already_awarded"
	// OutcomeNoSuccess means the rule's condition was not met.
	OutcomeNoSuccess Outcome = "no_success"
	// OutcomeFailed means the rule could not be evaluated or persisted.
	OutcomeFailed Outcome = "failed"
)

type Dispatcher interface {
	// Scan evaluates every rule against the user's current streak and
	// awards any badges newly earned. It never returns an error; failures
	// are reported per rule and logged.
	Scan(ctx context.Context, tx *gorm.DB, userID uuid.UUID) map[string]Outcome
}

type dispatcher struct {
	userRepo  repos.UserRepo
	badgeRepo repos.BadgeRepo
	rules     []Rule
	log       *logger.Logger
}

func NewDispatcher(userRepo repos.UserRepo, badgeRepo repos.BadgeRepo, rules []Rule, baseLog *logger.Logger) Dispatcher {
	if rules == nil {
		rules = DefaultRules
	}
	return &dispatcher{
		userRepo:  userRepo,
		badgeRepo: badgeRepo,
		rules:     rules,
		log:       baseLog.With("component", "BadgeDispatcher"),
	}
}

func (d *dispatcher) Scan(ctx context.Context, tx *gorm.DB, userID uuid.UUID) map[string]Outcome {
	results := make(map[string]Outcome, len(d.rules))

	user, err := d.userRepo.GetByID(ctx, tx, userID)
	if err != nil {
		d.log.Error("badge scan could not load user", "user_id", userID.String(), "error", err.Error())
		for _, rule := range d.rules {
			results[rule.Name] = OutcomeFailed
		}
		return results
	}

	for _, rule := range d.rules {
		results[rule.Name] = d.evaluate(ctx, tx, user, rule)
	}
	return results
}

func (d *dispatcher) evaluate(ctx context.Context, tx *gorm.DB, user *types.User, rule Rule) Outcome {
	if user.SuccessInARow < rule.Threshold {
		return OutcomeNoSuccess
	}

	badge := &types.Badge{
		UserID:          user.ID,
		BadgeID:         rule.BadgeID,
		AchievementName: rule.Name,
	}
	if _, err := d.badgeRepo.Create(ctx, tx, badge); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return OutcomeAlreadyAwarded
		}
		d.log.Error("badge award failed",
			"user_id", user.ID.String(),
			"badge_id", rule.BadgeID,
			"error", err.Error())
		return OutcomeFailed
	}

	d.log.Info("badge awarded",
		"user_id", user.ID.String(),
		"badge_id", rule.BadgeID,
		"achievement", rule.Name)
	return OutcomeSuccess
}
