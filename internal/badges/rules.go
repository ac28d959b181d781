package badges

// Rule awards a numbered badge once a user's correct-answer streak
// reaches Threshold.
type Rule struct {
	Name      string
	BadgeID   int
	Threshold int
}

// DefaultRules is the built-in achievement set. Order does not matter;
// every rule is evaluated on each scan.
var DefaultRules = []Rule{
	{Name: "Starter", BadgeID: 2, Threshold: 1},
	{Name: "Unstoppable", BadgeID: 1, Threshold: 10},
}
