// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/achrank/internal/model"
)

// effectiveLocked is what remains locked once unachievable achievements are
// optionally discounted.
type effectiveLocked struct {
	ach int
	gs  int
	ta  int
	dlc int
}

func lockedEffective(g *model.GameSummary, s model.Settings) effectiveLocked {
	eff := effectiveLocked{
		ach: g.Locked.Ach,
		gs:  g.Locked.GS,
		ta:  g.Locked.TA,
		dlc: g.Locked.DLCAch,
	}
	if !s.CountUnachievableInTotal {
		eff.ach -= g.Unachievable.Ach
		eff.gs -= g.Unachievable.GS
		eff.ta -= g.Unachievable.TA
		eff.dlc -= g.Unachievable.DLCAch
	}
	return eff
}

// Evaluate computes the ranking view of a game. It returns false when the game
// lacks data or has nothing left to earn.
func Evaluate(g *model.GameSummary, s model.Settings) (model.GameInfo, bool) {
	eff := lockedEffective(g, s)

	totalAch := g.Earned.Ach + nonNegative(eff.ach)
	// Unachievable gamerscore always stays in the completion denominator.
	totalGS := g.Earned.GS + nonNegative(g.Locked.GS)
	if totalAch <= 0 || totalGS <= 0 {
		return model.GameInfo{}, false
	}

	remainingAch := nonNegative(eff.ach)
	if remainingAch == 0 {
		return model.GameInfo{}, false
	}

	return model.GameInfo{
		Game:           g.Name,
		Completion:     float64(g.Earned.GS) / float64(totalGS),
		RemainingAch:   remainingAch,
		RemainingGS:    nonNegative(eff.gs),
		UnachAch:       g.Unachievable.Ach,
		DLCRemaining:   g.Locked.DLCAch,
		AvgLockedRatio: mean(g.LockedAchievableRatios),
		EarnedAch:      g.Earned.Ach,
		TotalAch:       totalAch,
		EarnedGS:       g.Earned.GS,
		TotalGS:        totalGS,
	}, true
}

// Rank returns every eligible game ordered by remaining achievements, fewest
// first. Ties keep first-seen order.
func Rank(lib *model.Library, s model.Settings) []model.GameInfo {
	ranked := make([]model.GameInfo, 0, lib.Len())
	for _, g := range lib.Games() {
		if info, ok := Evaluate(g, s); ok {
			ranked = append(ranked, info)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RemainingAch < ranked[j].RemainingAch
	})
	return ranked
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// mean returns the average of values, or nil when there are none.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

func ratio(num, den int) *float64 {
	if den <= 0 {
		return nil
	}
	r := float64(num) / float64(den)
	return &r
}

func percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
