package stats

import (
	"sort"

	"github.com/verte-zerg/achrank/internal/model"
)

// DLCPack holds completion stats for one DLC pack of a game.
type DLCPack struct {
	Game            string    `json:"game"`
	DLCName         string    `json:"dlc_name"`
	EarnedAch       int       `json:"earned_ach"`
	EarnedGS        int       `json:"earned_gs"`
	EarnedTA        int       `json:"earned_ta"`
	LockedAch       int       `json:"locked_ach"`
	LockedGS        int       `json:"locked_gs"`
	LockedTA        int       `json:"locked_ta"`
	LockedUnachAch  int       `json:"locked_unach_ach"`
	LockedUnachGS   int       `json:"locked_unach_gs"`
	EarnedRatios    []float64 `json:"earned_ratios"`
	LockedRatios    []float64 `json:"locked_ratios"`
	TotalAch        int       `json:"total_ach"`
	TotalGS         int       `json:"total_gs"`
	TotalTA         int       `json:"total_ta"`
	RemainingAch    int       `json:"remaining_ach"`
	RemainingGS     int       `json:"remaining_gs"`
	CompletionPct   float64   `json:"completion_pct"`
	IsCompleted     bool      `json:"is_completed"`
	AvgEarnedRatio  *float64  `json:"avg_earned_ratio"`
	AvgLockedRatio  *float64  `json:"avg_locked_ratio"`
	AvgOverallRatio *float64  `json:"avg_overall_ratio"`
}

// DLCGameStats rolls up the DLC packs of one game.
type DLCGameStats struct {
	TotalDLCs       int      `json:"total_dlcs"`
	CompletedDLCs   int      `json:"completed_dlcs"`
	TotalGS         int      `json:"total_gs"`
	EarnedGS        int      `json:"earned_gs"`
	TotalTA         int      `json:"total_ta"`
	EarnedTA        int      `json:"earned_ta"`
	AvgEarnedRatio  *float64 `json:"avg_earned_ratio"`
	AvgOverallRatio *float64 `json:"avg_overall_ratio"`
	AvgRatio        *float64 `json:"avg_ratio"`
}

// DLCSummary totals every DLC pack in the profile.
type DLCSummary struct {
	TotalDLCs                int `json:"total_dlcs"`
	CompletedDLCs            int `json:"completed_dlcs"`
	TotalDLCAchievements     int `json:"total_dlc_achievements"`
	CompletedDLCAchievements int `json:"completed_dlc_achievements"`
	TotalDLCGamerscore       int `json:"total_dlc_gamerscore"`
	CompletedDLCGamerscore   int `json:"completed_dlc_gamerscore"`
	TotalDLCTAScore          int `json:"total_dlc_tascore"`
	CompletedDLCTAScore      int `json:"completed_dlc_tascore"`
}

// DLCOverall holds profile-wide gamerscore, TA and ratio figures.
type DLCOverall struct {
	TotalGames      int      `json:"total_games"`
	TotalEarnedGS   int      `json:"total_earned_gs"`
	TotalEarnedTA   int      `json:"total_earned_ta"`
	TotalLockedGS   int      `json:"total_locked_gs"`
	TotalLockedTA   int      `json:"total_locked_ta"`
	TotalGS         int      `json:"total_gs"`
	TotalTA         int      `json:"total_ta"`
	AvgEarnedRatio  *float64 `json:"avg_earned_ratio"`
	AvgLockedRatio  *float64 `json:"avg_locked_ratio"`
	AvgOverallRatio *float64 `json:"avg_overall_ratio"`
}

// DLCReport is the full DLC breakdown.
type DLCReport struct {
	Summary   DLCSummary
	Overall   DLCOverall
	Packs     []DLCPack
	ByGame    map[string][]DLCPack
	GameStats map[string]DLCGameStats
}

// SummarizeDLC groups retained achievements by DLC pack within each game.
func SummarizeDLC(lib *model.Library, s model.Settings) DLCReport {
	report := DLCReport{
		Packs:     []DLCPack{},
		ByGame:    map[string][]DLCPack{},
		GameStats: map[string]DLCGameStats{},
	}

	for _, g := range lib.Games() {
		packs := groupPacks(g)
		if len(packs) == 0 {
			continue
		}
		for i := range packs {
			finishPack(&packs[i], s)
			addToSummary(&report.Summary, packs[i])
		}
		report.ByGame[g.Name] = packs
		report.GameStats[g.Name] = gameDLCStats(packs)
		report.Packs = append(report.Packs, packs...)
	}

	sort.SliceStable(report.Packs, func(i, j int) bool {
		if report.Packs[i].Game == report.Packs[j].Game {
			return report.Packs[i].DLCName < report.Packs[j].DLCName
		}
		return report.Packs[i].Game < report.Packs[j].Game
	})

	report.Overall = overallStats(lib)
	return report
}

func groupPacks(g *model.GameSummary) []DLCPack {
	var packs []DLCPack
	index := map[string]int{}
	pack := func(name string) *DLCPack {
		if i, ok := index[name]; ok {
			return &packs[i]
		}
		index[name] = len(packs)
		packs = append(packs, DLCPack{
			Game:         g.Name,
			DLCName:      name,
			EarnedRatios: []float64{},
			LockedRatios: []float64{},
		})
		return &packs[len(packs)-1]
	}

	for _, a := range g.EarnedAchievements {
		if !a.IsDLC() {
			continue
		}
		p := pack(a.DLC)
		p.EarnedAch++
		p.EarnedGS += a.Gamerscore
		p.EarnedTA += a.TAScore
		if a.Ratio != nil {
			p.EarnedRatios = append(p.EarnedRatios, *a.Ratio)
		}
	}
	for _, a := range g.LockedAchievements {
		if !a.IsDLC() {
			continue
		}
		p := pack(a.DLC)
		p.LockedAch++
		p.LockedGS += a.Gamerscore
		p.LockedTA += a.TAScore
		if a.Ratio != nil {
			p.LockedRatios = append(p.LockedRatios, *a.Ratio)
		}
		if a.Unachievable {
			p.LockedUnachAch++
			p.LockedUnachGS += a.Gamerscore
		}
	}
	return packs
}

func finishPack(p *DLCPack, s model.Settings) {
	effAch, effGS := p.LockedAch, p.LockedGS
	if !s.CountUnachievableInTotal {
		effAch -= p.LockedUnachAch
		effGS -= p.LockedUnachGS
	}

	p.TotalAch = p.EarnedAch + p.LockedAch
	p.TotalGS = p.EarnedGS + p.LockedGS
	p.TotalTA = p.EarnedTA + p.LockedTA
	p.RemainingAch = nonNegative(effAch)
	p.RemainingGS = nonNegative(effGS)
	p.CompletionPct = percent(p.EarnedGS, p.TotalGS)
	p.IsCompleted = p.RemainingAch == 0 && p.TotalAch > 0

	p.AvgEarnedRatio = mean(p.EarnedRatios)
	p.AvgLockedRatio = mean(p.LockedRatios)
	all := make([]float64, 0, len(p.EarnedRatios)+len(p.LockedRatios))
	all = append(all, p.EarnedRatios...)
	all = append(all, p.LockedRatios...)
	p.AvgOverallRatio = mean(all)
}

func addToSummary(sum *DLCSummary, p DLCPack) {
	sum.TotalDLCs++
	if p.IsCompleted {
		sum.CompletedDLCs++
	}
	sum.TotalDLCAchievements += p.TotalAch
	sum.CompletedDLCAchievements += p.EarnedAch
	sum.TotalDLCGamerscore += p.TotalGS
	sum.CompletedDLCGamerscore += p.EarnedGS
	sum.TotalDLCTAScore += p.TotalTA
	sum.CompletedDLCTAScore += p.EarnedTA
}

func gameDLCStats(packs []DLCPack) DLCGameStats {
	st := DLCGameStats{TotalDLCs: len(packs)}
	var earnedAvgs, overallAvgs []float64
	for _, p := range packs {
		if p.IsCompleted {
			st.CompletedDLCs++
		}
		st.TotalGS += p.TotalGS
		st.EarnedGS += p.EarnedGS
		st.TotalTA += p.TotalTA
		st.EarnedTA += p.EarnedTA
		if p.AvgEarnedRatio != nil {
			earnedAvgs = append(earnedAvgs, *p.AvgEarnedRatio)
		}
		if p.AvgOverallRatio != nil {
			overallAvgs = append(overallAvgs, *p.AvgOverallRatio)
		}
	}
	st.AvgEarnedRatio = mean(earnedAvgs)
	st.AvgOverallRatio = mean(overallAvgs)
	st.AvgRatio = st.AvgEarnedRatio
	return st
}

func overallStats(lib *model.Library) DLCOverall {
	o := DLCOverall{TotalGames: lib.Len()}
	var earned, locked []float64
	for _, g := range lib.Games() {
		o.TotalEarnedGS += g.Earned.GS
		o.TotalEarnedTA += g.Earned.TA
		o.TotalLockedGS += g.Locked.GS
		o.TotalLockedTA += g.Locked.TA
		earned = append(earned, g.EarnedRatios...)
		locked = append(locked, g.LockedAchievableRatios...)
	}
	o.TotalGS = o.TotalEarnedGS + o.TotalLockedGS
	o.TotalTA = o.TotalEarnedTA + o.TotalLockedTA
	o.AvgEarnedRatio = mean(earned)
	o.AvgLockedRatio = mean(locked)
	all := make([]float64, 0, len(earned)+len(locked))
	all = append(all, earned...)
	all = append(all, locked...)
	o.AvgOverallRatio = mean(all)
	return o
}
