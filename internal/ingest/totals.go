package ingest

import (
	"github.com/verte-zerg/achrank/internal/model"
)

// SumUnlocked totals gamerscore and TA score over every dated row, DLC included.
func SumUnlocked(rows []Row) model.EarnedTotals {
	var totals model.EarnedTotals
	for _, row := range rows {
		rec := ParseRecord(row)
		if rec.UnlockDate == "" {
			continue
		}
		totals.GS += rec.Gamerscore
		totals.TA += rec.TAScore
	}
	return totals
}

// SumUnlockedFile re-reads the unlocked export and totals it with SumUnlocked.
func SumUnlockedFile(path string) (model.EarnedTotals, error) {
	table, err := LoadTable(path, UnlockedColumns)
	if err != nil {
		return model.EarnedTotals{}, err
	}
	return SumUnlocked(table.Rows), nil
}
