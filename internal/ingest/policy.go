package ingest

import "github.com/verte-zerg/achrank/internal/model"

// Policy classifies locked achievements as unachievable.
type Policy struct {
	overrides map[string]struct{}
}

// NewPolicy returns a policy that also treats every locked achievement of the
// named games as unachievable.
func NewPolicy(games []string) Policy {
	overrides := make(map[string]struct{}, len(games))
	for _, g := range games {
		overrides[g] = struct{}{}
	}
	return Policy{overrides: overrides}
}

// Unachievable reports whether a locked achievement can no longer be earned.
func (p Policy) Unachievable(a model.Achievement) bool {
	if a.Unachievable {
		return true
	}
	_, ok := p.overrides[a.Game]
	return ok
}
