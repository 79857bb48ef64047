package ingest

import (
	"strings"

	"github.com/verte-zerg/achrank/internal/model"
)

// IngestStats counts what happened to the rows of one export.
type IngestStats struct {
	Rows          int
	Added         int
	SkippedDLC    int
	SkippedNoDate int
}

// Aggregator folds export rows into per-game summaries.
type Aggregator struct {
	settings model.Settings
	policy   Policy
	library  *model.Library
}

// NewAggregator returns an aggregator writing into a fresh library.
func NewAggregator(settings model.Settings) *Aggregator {
	return &Aggregator{
		settings: settings,
		policy:   NewPolicy(settings.UnachievableGames),
		library:  model.NewLibrary(),
	}
}

// Library returns the aggregated games.
func (a *Aggregator) Library() *model.Library {
	return a.library
}

// ParseRecord extracts the typed fields shared by both exports.
func ParseRecord(row Row) model.Achievement {
	return model.Achievement{
		Game:         strings.TrimSpace(row.Get(ColGameName)),
		DLC:          strings.TrimSpace(row.Get(ColDLCName)),
		Gamerscore:   ParseInt(row.Get(ColGamerscore), 0),
		TAScore:      ParseInt(row.Get(ColTAScore), 0),
		Ratio:        ParseFloat(row.Get(ColTARatio)),
		UnlockDate:   strings.TrimSpace(row.Get(ColUnlockDate)),
		Unachievable: ParseTruthy(row.Get(ColUnachievable)),
		Title:        row.Title(),
	}
}

// AddUnlocked ingests rows of the unlocked export. Rows without an unlock date
// are ignored even though the export should not contain any.
func (a *Aggregator) AddUnlocked(rows []Row) IngestStats {
	var st IngestStats
	for _, row := range rows {
		st.Rows++
		rec := ParseRecord(row)
		rec.Unachievable = false
		if !a.settings.IncludeDLC && rec.IsDLC() {
			st.SkippedDLC++
			continue
		}
		if rec.UnlockDate == "" {
			st.SkippedNoDate++
			continue
		}

		g := a.library.Game(rec.Game)
		g.Earned.Add(rec)
		if rec.Ratio != nil {
			g.EarnedRatios = append(g.EarnedRatios, *rec.Ratio)
		}
		g.EarnedAchievements = append(g.EarnedAchievements, rec)
		st.Added++
	}
	return st
}

// AddLocked ingests rows of the locked export.
func (a *Aggregator) AddLocked(rows []Row) IngestStats {
	var st IngestStats
	for _, row := range rows {
		st.Rows++
		rec := ParseRecord(row)
		if !a.settings.IncludeDLC && rec.IsDLC() {
			st.SkippedDLC++
			continue
		}
		rec.Unachievable = a.policy.Unachievable(rec)

		g := a.library.Game(rec.Game)
		g.Locked.Add(rec)
		if rec.Unachievable {
			g.Unachievable.Add(rec)
		} else if rec.Ratio != nil {
			g.LockedAchievableRatios = append(g.LockedAchievableRatios, *rec.Ratio)
		}
		g.LockedAchievements = append(g.LockedAchievements, rec)
		if !rec.Unachievable {
			g.LockedAchievable = append(g.LockedAchievable, rec)
		}
		st.Added++
	}
	return st
}
