package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/verte-zerg/achrank/internal/model"
	"github.com/verte-zerg/achrank/internal/store"
)

func TestBuildUnachReport(t *testing.T) {
	st, err := store.Open(store.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	rows := []store.LockedRow{
		{Game: "Besiege (Windows)", Gamerscore: 20, Unachievable: true},
		{Game: "Besiege (Windows)", Gamerscore: 30, Unachievable: true},
		{Game: "Halo", Gamerscore: 10, Unachievable: false},
		{Game: "Second Extinction (Game Preview)", Gamerscore: 100, Unachievable: true},
	}
	if err := st.InsertLocked(ctx, rows); err != nil {
		t.Fatalf("insert rows: %v", err)
	}

	report, err := BuildUnachReport(ctx, st, 30)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Totals.Rows != 4 || report.Totals.UnachCount != 3 || report.Totals.UnachGS != 150 {
		t.Fatalf("unexpected totals: %+v", report.Totals)
	}

	var buf bytes.Buffer
	if err := RenderUnachReport(&buf, report); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"rows=4",
		"per_game_count=3",
		"total_unach_count=3",
		"total_unach_gs=150",
		"",
		"Top games by unachievable count:",
		"- Besiege (Windows): 2 unachievable (50 GS) of 2 locked total",
		"- Second Extinction (Game Preview): 1 unachievable (100 GS) of 1 locked total",
		"",
		"Top games by unachievable GS:",
		"- Second Extinction (Game Preview): 100 GS from 1 unachievable (1 locked total)",
		"- Besiege (Windows): 50 GS from 2 unachievable (2 locked total)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderRecommendations(t *testing.T) {
	avg := 2.5
	ranked := []model.GameInfo{
		{Game: "Halo", Completion: 0.9, RemainingAch: 1, RemainingGS: 1200, AvgLockedRatio: &avg},
		{Game: "Forza", Completion: 0.5, RemainingAch: 4, RemainingGS: 40},
		{Game: "Gears", Completion: 0.1, RemainingAch: 9, RemainingGS: 90},
	}
	var buf bytes.Buffer
	if err := RenderRecommendations(&buf, ranked, 2, 100); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Next up (2 of 3 in progress)\n") {
		t.Fatalf("unexpected title: %q", out)
	}
	if !strings.Contains(out, "1,200") || !strings.Contains(out, "90.0%") || !strings.Contains(out, "2.50") {
		t.Fatalf("expected formatted values, got:\n%s", out)
	}
	if strings.Contains(out, "Gears") {
		t.Fatalf("expected output limited to top 2, got:\n%s", out)
	}
}

func TestRenderRecommendationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRecommendations(&buf, nil, 10, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No games left to finish.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderRecommendationsTruncatesLongNames(t *testing.T) {
	ranked := []model.GameInfo{
		{Game: strings.Repeat("Very Long Title ", 10), RemainingAch: 1},
	}
	var buf bytes.Buffer
	if err := RenderRecommendations(&buf, ranked, 0, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		if displayWidth(line) > 60 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}
