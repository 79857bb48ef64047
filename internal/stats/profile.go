package stats

import (
	"errors"
	"sort"

	"github.com/verte-zerg/achrank/internal/model"
)

// BucketLabels lists completion buckets from lowest to highest.
var BucketLabels = []string{"0-19%", "20-39%", "40-59%", "60-79%", "80-94%", "95-99%", "100%"}

// bucketFloors pairs labels with their lower bound, highest first.
var bucketFloors = []struct {
	label string
	floor float64
}{
	{"100%", 100},
	{"95-99%", 95},
	{"80-94%", 80},
	{"60-79%", 60},
	{"40-59%", 40},
	{"20-39%", 20},
	{"0-19%", 0},
}

// ProfileSummary holds account-wide totals.
type ProfileSummary struct {
	TotalGames             int      `json:"total_games"`
	CompletedGames         int      `json:"completed_games"`
	TotalGSEarned          int      `json:"total_gs_earned"`
	TotalGSPossible        int      `json:"total_gs_possible"`
	GSCompletionPct        float64  `json:"gs_completion_pct"`
	TotalTAEarned          int      `json:"total_ta_earned"`
	TotalTAPossible        int      `json:"total_ta_possible"`
	TACompletionPct        float64  `json:"ta_completion_pct"`
	OverallTARatioEarned   *float64 `json:"overall_ta_ratio_earned"`
	OverallTARatioPossible *float64 `json:"overall_ta_ratio_possible"`
	StartedGames           int      `json:"started_games"`
}

// CompletionBucket counts games within a completion range.
type CompletionBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BlockedGame is a game with unachievable locked achievements.
type BlockedGame struct {
	Game         string `json:"game"`
	UnachCount   int    `json:"unach_count"`
	UnachGS      int    `json:"unach_gs"`
	TotalLocked  int    `json:"total_locked"`
	FullyBlocked bool   `json:"fully_blocked"`
}

// BlockedGames groups blocked games with their totals.
type BlockedGames struct {
	TotalUnachCount int           `json:"total_unach_count"`
	TotalUnachGS    int           `json:"total_unach_gs"`
	Games           []BlockedGame `json:"games"`
}

// DLCOnlyGame is a game whose remaining achievements all belong to DLC.
type DLCOnlyGame struct {
	Game                     string `json:"game"`
	DLCAchievementsRemaining int    `json:"dlc_achievements_remaining"`
}

// GameOverview summarizes one game for the all-games list.
type GameOverview struct {
	Game           string  `json:"game"`
	EarnedGS       int     `json:"earned_gs"`
	EarnedTA       int     `json:"earned_ta"`
	EarnedAch      int     `json:"earned_ach"`
	TotalGS        int     `json:"total_gs"`
	TotalTA        int     `json:"total_ta"`
	TotalAch       int     `json:"total_ach"`
	RemainingAch   int     `json:"remaining_ach"`
	RemainingGS    int     `json:"remaining_gs"`
	CompletionPct  float64 `json:"completion_pct"`
	IsCompleted    bool    `json:"is_completed"`
	LockedUnachAch int     `json:"locked_unach_ach"`
	LockedUnachGS  int     `json:"locked_unach_gs"`
}

// Profile is the full account-wide report.
type Profile struct {
	Summary  ProfileSummary
	Buckets  []CompletionBucket
	Blocked  BlockedGames
	DLCOnly  []DLCOnlyGame
	AllGames []GameOverview

	// EarnedErr is set when earned totals fell back to the aggregated games.
	EarnedErr error
}

// EarnedSource re-derives earned totals straight from the unlocked export.
type EarnedSource func() (model.EarnedTotals, error)

var errNoEarnedSource = errors.New("no earned totals source")

// SummarizeProfile computes account-wide totals, completion buckets and the
// derived game lists. Earned totals come from source so that DLC filtering does
// not hide anything the user unlocked; when source fails they are summed from
// the aggregated games instead.
func SummarizeProfile(lib *model.Library, s model.Settings, source EarnedSource) Profile {
	var p Profile

	earned, err := earnedTotals(lib, source)
	p.EarnedErr = err
	p.Summary.TotalGSEarned = earned.GS
	p.Summary.TotalTAEarned = earned.TA

	counts := make(map[string]int, len(bucketFloors))
	for _, g := range lib.Games() {
		eff := lockedEffective(g, s)
		totalGS := g.Earned.GS + nonNegative(eff.gs)
		totalTA := g.Earned.TA + nonNegative(eff.ta)
		remaining := nonNegative(eff.ach)

		if g.Started() {
			p.Summary.TotalGames++
			if remaining == 0 {
				p.Summary.CompletedGames++
			}
			p.Summary.TotalGSPossible += maxInt(totalGS, g.Earned.GS)
			p.Summary.TotalTAPossible += maxInt(totalTA, g.Earned.TA)
		}

		if totalGS > 0 {
			p.Summary.StartedGames++
			counts[bucketFor(percent(g.Earned.GS, totalGS))]++
		}
	}

	p.Summary.GSCompletionPct = percent(p.Summary.TotalGSEarned, p.Summary.TotalGSPossible)
	p.Summary.TACompletionPct = percent(p.Summary.TotalTAEarned, p.Summary.TotalTAPossible)
	p.Summary.OverallTARatioEarned = ratio(p.Summary.TotalTAEarned, p.Summary.TotalGSEarned)
	p.Summary.OverallTARatioPossible = ratio(p.Summary.TotalTAPossible, p.Summary.TotalGSPossible)

	p.Buckets = make([]CompletionBucket, 0, len(BucketLabels))
	for _, label := range BucketLabels {
		p.Buckets = append(p.Buckets, CompletionBucket{
			Label:      label,
			Count:      counts[label],
			Percentage: percent(counts[label], p.Summary.StartedGames),
		})
	}

	p.Blocked = blockedGames(lib)
	p.DLCOnly = dlcOnlyGames(lib, s)
	p.AllGames = allGames(lib, s)
	return p
}

func earnedTotals(lib *model.Library, source EarnedSource) (model.EarnedTotals, error) {
	err := errNoEarnedSource
	if source != nil {
		var totals model.EarnedTotals
		totals, err = source()
		if err == nil {
			return totals, nil
		}
	}
	var totals model.EarnedTotals
	for _, g := range lib.Games() {
		totals.GS += g.Earned.GS
		totals.TA += g.Earned.TA
	}
	return totals, err
}

func bucketFor(pct float64) string {
	for _, b := range bucketFloors {
		if pct >= b.floor {
			return b.label
		}
	}
	return bucketFloors[len(bucketFloors)-1].label
}

func blockedGames(lib *model.Library) BlockedGames {
	blocked := BlockedGames{Games: []BlockedGame{}}
	for _, g := range lib.Games() {
		if g.Unachievable.Ach <= 0 {
			continue
		}
		blocked.TotalUnachCount += g.Unachievable.Ach
		blocked.TotalUnachGS += g.Unachievable.GS
		blocked.Games = append(blocked.Games, BlockedGame{
			Game:         g.Name,
			UnachCount:   g.Unachievable.Ach,
			UnachGS:      g.Unachievable.GS,
			TotalLocked:  g.Locked.Ach,
			FullyBlocked: g.Locked.Ach > 0 && g.Unachievable.Ach == g.Locked.Ach,
		})
	}
	sort.SliceStable(blocked.Games, func(i, j int) bool {
		return blocked.Games[i].UnachCount > blocked.Games[j].UnachCount
	})
	return blocked
}

func dlcOnlyGames(lib *model.Library, s model.Settings) []DLCOnlyGame {
	out := []DLCOnlyGame{}
	for _, g := range lib.Games() {
		if g.Locked.Ach <= 0 {
			continue
		}
		eff := lockedEffective(g, s)
		if eff.ach > 0 && eff.ach == eff.dlc {
			out = append(out, DLCOnlyGame{Game: g.Name, DLCAchievementsRemaining: eff.ach})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DLCAchievementsRemaining > out[j].DLCAchievementsRemaining
	})
	return out
}

func allGames(lib *model.Library, s model.Settings) []GameOverview {
	games := lib.Games()
	sort.Slice(games, func(i, j int) bool {
		return games[i].Name < games[j].Name
	})
	out := []GameOverview{}
	for _, g := range games {
		eff := lockedEffective(g, s)
		totalGS := g.Earned.GS + nonNegative(eff.gs)
		if !g.Started() && totalGS <= 0 {
			continue
		}
		remaining := nonNegative(eff.ach)
		out = append(out, GameOverview{
			Game:           g.Name,
			EarnedGS:       g.Earned.GS,
			EarnedTA:       g.Earned.TA,
			EarnedAch:      g.Earned.Ach,
			TotalGS:        totalGS,
			TotalTA:        g.Earned.TA + nonNegative(eff.ta),
			TotalAch:       g.Earned.Ach + nonNegative(eff.ach),
			RemainingAch:   remaining,
			RemainingGS:    nonNegative(eff.gs),
			CompletionPct:  percent(g.Earned.GS, totalGS),
			IsCompleted:    remaining == 0,
			LockedUnachAch: g.Unachievable.Ach,
			LockedUnachGS:  g.Unachievable.GS,
		})
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
