package stats

import (
	"errors"
	"testing"

	"github.com/verte-zerg/achrank/internal/model"
)

func profileLibrary() *model.Library {
	lib := model.NewLibrary()

	done := lib.Game("Done")
	done.Earned = model.Counters{Ach: 10, GS: 1000, TA: 1500}

	half := lib.Game("Half")
	half.Earned = model.Counters{Ach: 5, GS: 500, TA: 600}
	half.Locked = model.Counters{Ach: 5, GS: 500, TA: 900, DLCAch: 1}

	blocked := lib.Game("Besiege (Windows)")
	blocked.Earned = model.Counters{Ach: 1, GS: 10, TA: 10}
	blocked.Locked = model.Counters{Ach: 4, GS: 90, TA: 120}
	blocked.Unachievable = model.Counters{Ach: 4, GS: 90, TA: 120}

	dlcOnly := lib.Game("DLC Only")
	dlcOnly.Earned = model.Counters{Ach: 20, GS: 950, TA: 1000}
	dlcOnly.Locked = model.Counters{Ach: 2, GS: 50, TA: 80, DLCAch: 2}

	unstarted := lib.Game("Unstarted")
	unstarted.Locked = model.Counters{Ach: 3, GS: 30, TA: 30}

	return lib
}

func TestSummarizeProfileTotals(t *testing.T) {
	lib := profileLibrary()
	source := func() (model.EarnedTotals, error) {
		return model.EarnedTotals{GS: 2500, TA: 3200}, nil
	}
	p := SummarizeProfile(lib, model.DefaultSettings(), source)
	if p.EarnedErr != nil {
		t.Fatalf("unexpected fallback: %v", p.EarnedErr)
	}
	s := p.Summary
	if s.TotalGames != 4 {
		t.Fatalf("expected 4 started games, got %d", s.TotalGames)
	}
	if s.CompletedGames != 1 {
		t.Fatalf("expected 1 completed game, got %d", s.CompletedGames)
	}
	if s.TotalGSEarned != 2500 || s.TotalTAEarned != 3200 {
		t.Fatalf("expected earned totals from source, got %d/%d", s.TotalGSEarned, s.TotalTAEarned)
	}
	if s.TotalGSPossible != 1000+1000+100+1000 {
		t.Fatalf("unexpected gs possible: %d", s.TotalGSPossible)
	}
	if s.StartedGames != 5 {
		t.Fatalf("expected 5 games with a positive total, got %d", s.StartedGames)
	}
	if s.OverallTARatioEarned == nil || *s.OverallTARatioEarned != 3200.0/2500.0 {
		t.Fatalf("unexpected earned ta ratio: %v", s.OverallTARatioEarned)
	}
}

func TestSummarizeProfileFallback(t *testing.T) {
	lib := profileLibrary()
	failing := func() (model.EarnedTotals, error) {
		return model.EarnedTotals{}, errors.New("read failed")
	}
	p := SummarizeProfile(lib, model.DefaultSettings(), failing)
	if p.EarnedErr == nil {
		t.Fatalf("expected fallback error to be recorded")
	}
	if p.Summary.TotalGSEarned != 1000+500+10+950 {
		t.Fatalf("expected aggregated earned gs, got %d", p.Summary.TotalGSEarned)
	}

	p = SummarizeProfile(lib, model.DefaultSettings(), nil)
	if p.EarnedErr == nil || p.Summary.TotalTAEarned != 1500+600+10+1000 {
		t.Fatalf("expected nil source to fall back, got %+v", p.Summary)
	}
}

func TestSummarizeProfileBuckets(t *testing.T) {
	p := SummarizeProfile(profileLibrary(), model.DefaultSettings(), nil)
	want := map[string]int{
		"100%":   1,
		"95-99%": 1,
		"40-59%": 1,
		"0-19%":  2,
	}
	if len(p.Buckets) != len(BucketLabels) {
		t.Fatalf("expected %d buckets, got %d", len(BucketLabels), len(p.Buckets))
	}
	for i, b := range p.Buckets {
		if b.Label != BucketLabels[i] {
			t.Fatalf("bucket %d: expected label %s, got %s", i, BucketLabels[i], b.Label)
		}
		if b.Count != want[b.Label] {
			t.Fatalf("bucket %s: expected %d, got %d", b.Label, want[b.Label], b.Count)
		}
	}
	if p.Buckets[0].Percentage != 40 {
		t.Fatalf("expected 0-19%% bucket to hold 40%%, got %v", p.Buckets[0].Percentage)
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[float64]string{
		100:   "100%",
		99.99: "95-99%",
		95:    "95-99%",
		94.9:  "80-94%",
		60:    "60-79%",
		39.99: "20-39%",
		0:     "0-19%",
	}
	for pct, want := range cases {
		if got := bucketFor(pct); got != want {
			t.Fatalf("bucketFor(%v) = %s, want %s", pct, got, want)
		}
	}
}

func TestSummarizeProfileBlockedAndDLCOnly(t *testing.T) {
	p := SummarizeProfile(profileLibrary(), model.DefaultSettings(), nil)
	if len(p.Blocked.Games) != 1 {
		t.Fatalf("expected 1 blocked game, got %d", len(p.Blocked.Games))
	}
	b := p.Blocked.Games[0]
	if b.Game != "Besiege (Windows)" || !b.FullyBlocked || b.UnachGS != 90 {
		t.Fatalf("unexpected blocked game: %+v", b)
	}
	if p.Blocked.TotalUnachCount != 4 || p.Blocked.TotalUnachGS != 90 {
		t.Fatalf("unexpected blocked totals: %+v", p.Blocked)
	}
	if len(p.DLCOnly) != 1 || p.DLCOnly[0].Game != "DLC Only" || p.DLCOnly[0].DLCAchievementsRemaining != 2 {
		t.Fatalf("unexpected dlc-only games: %+v", p.DLCOnly)
	}
}

func TestSummarizeProfileUnachievableToggle(t *testing.T) {
	s := model.DefaultSettings()
	s.CountUnachievableInTotal = false
	p := SummarizeProfile(profileLibrary(), s, nil)
	if p.Summary.CompletedGames != 2 {
		t.Fatalf("expected fully blocked game to count as completed, got %d", p.Summary.CompletedGames)
	}
	var besiege GameOverview
	for _, g := range p.AllGames {
		if g.Game == "Besiege (Windows)" {
			besiege = g
		}
	}
	if !besiege.IsCompleted || besiege.TotalGS != 10 || besiege.CompletionPct != 100 {
		t.Fatalf("unexpected overview: %+v", besiege)
	}
}

func TestSummarizeProfileAllGamesSorted(t *testing.T) {
	p := SummarizeProfile(profileLibrary(), model.DefaultSettings(), nil)
	want := []string{"Besiege (Windows)", "DLC Only", "Done", "Half", "Unstarted"}
	if len(p.AllGames) != len(want) {
		t.Fatalf("expected %d games, got %d", len(want), len(p.AllGames))
	}
	for i, name := range want {
		if p.AllGames[i].Game != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, p.AllGames[i].Game)
		}
	}
}
