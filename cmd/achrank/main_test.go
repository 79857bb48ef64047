package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/achrank/internal/config"
	"github.com/verte-zerg/achrank/internal/export"
)

const unlockedCSV = `GameName,Gamerscore,TAScore,TARatio,DLCName,UnlockDate
Halo,10,15,1.5,,2024-01-01
Halo,20,30,1.5,,2024-01-02
Forza,5,5,1.0,,2024-02-01
Forza,50,80,1.6,Expansion,2024-02-02
`

const lockedCSV = `GameName,Gamerscore,TAScore,TARatio,DLCName,Unachieveable
Halo,30,60,2.0,,
Forza,10,20,2.0,,
Forza,10,20,2.0,,TRUE
Besiege (Windows),20,20,1.0,,
`

type fixture struct {
	dir      string
	unlocked string
	locked   string
	outDir   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	f := fixture{
		dir:      dir,
		unlocked: filepath.Join(dir, "unlocked.csv"),
		locked:   filepath.Join(dir, "locked.csv"),
		outDir:   filepath.Join(dir, "out"),
	}
	if err := os.WriteFile(f.unlocked, []byte(unlockedCSV), 0o644); err != nil {
		t.Fatalf("write unlocked: %v", err)
	}
	if err := os.WriteFile(f.locked, []byte(lockedCSV), 0o644); err != nil {
		t.Fatalf("write locked: %v", err)
	}
	return f
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRankWritesReports(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "--unlocked", f.unlocked, "--locked", f.locked, "--out-dir", f.outDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Next up (3 of 3 in progress)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	doc, err := export.LoadMainStats(filepath.Join(f.outDir, export.MainStatsFile))
	if err != nil {
		t.Fatalf("load main stats: %v", err)
	}
	if doc.ProfileSummary.TotalGSEarned != 85 {
		t.Fatalf("unexpected earned total: %d", doc.ProfileSummary.TotalGSEarned)
	}
	var games []string
	for _, r := range doc.Recommendations {
		games = append(games, r.Game)
	}
	if strings.Join(games, ",") != "Halo,Besiege (Windows),Forza" {
		t.Fatalf("unexpected ranking: %v", games)
	}
	if !doc.Settings.IncludeDLC || !doc.Settings.CountUnachievableInTotal {
		t.Fatalf("unexpected settings echo: %+v", doc.Settings)
	}
	if _, err := export.LoadDLCData(filepath.Join(f.outDir, export.DLCDataFile)); err != nil {
		t.Fatalf("load dlc data: %v", err)
	}
}

func TestRankExcludesUnachievable(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "--unlocked", f.unlocked, "--locked", f.locked, "--out-dir", f.outDir,
		"--count-unachievable=false", "--top", "0")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	doc, err := export.LoadMainStats(filepath.Join(f.outDir, export.MainStatsFile))
	if err != nil {
		t.Fatalf("load main stats: %v", err)
	}
	if len(doc.Recommendations) != 2 {
		t.Fatalf("expected Besiege to drop out, got %+v", doc.Recommendations)
	}
	for _, r := range doc.Recommendations {
		if r.Game == "Forza" && r.RemainingAch != 1 {
			t.Fatalf("expected flagged row to be discounted, got %+v", r)
		}
	}
}

func TestRankConfigOverlay(t *testing.T) {
	f := newFixture(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[rank]\ninclude-dlc = false\ntop = 0\n\n[paths]\nout-dir = \"" + filepath.ToSlash(f.outDir) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "--unlocked", f.unlocked, "--locked", f.locked)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "" {
		t.Fatalf("expected top = 0 to suppress the table, got:\n%s", out)
	}
	doc, err := export.LoadMainStats(filepath.Join(f.outDir, export.MainStatsFile))
	if err != nil {
		t.Fatalf("load main stats: %v", err)
	}
	if doc.Settings.IncludeDLC {
		t.Fatalf("expected include-dlc from config")
	}
	if doc.ProfileSummary.TotalGSEarned != 85 {
		t.Fatalf("expected DLC filtering to keep earned totals, got %d", doc.ProfileSummary.TotalGSEarned)
	}

	// Flags win over config values.
	otherOut := filepath.Join(f.dir, "other")
	if _, err := execute(t, "--unlocked", f.unlocked, "--locked", f.locked, "--out-dir", otherOut); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(otherOut, export.MainStatsFile)); err != nil {
		t.Fatalf("expected report in flag out-dir: %v", err)
	}
}

func TestRankMissingExport(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(f.dir, "nope.csv")
	_, err := execute(t, "--unlocked", missing, "--locked", f.locked, "--out-dir", f.outDir)
	if err == nil || err.Error() != "missing "+missing+" (your unlocked export)" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(f.outDir, export.MainStatsFile)); !os.IsNotExist(statErr) {
		t.Fatalf("expected no report to be written")
	}
}

func TestRankMissingColumns(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.locked, []byte("GameName,Gamerscore\nHalo,10\n"), 0o644); err != nil {
		t.Fatalf("write locked: %v", err)
	}
	_, err := execute(t, "--unlocked", f.unlocked, "--locked", f.locked, "--out-dir", f.outDir)
	if err == nil || !strings.Contains(err.Error(), "missing columns: DLCName, TARatio, TAScore, Unachieveable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckUnach(t *testing.T) {
	f := newFixture(t)
	out, err := execute(t, "check-unach", "--locked", f.locked)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"rows=4\n",
		"per_game_count=3\n",
		"total_unach_count=1\n",
		"total_unach_gs=10\n",
		"- Forza: 1 unachievable (10 GS) of 2 locked total\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = execute(t, "check-unach", "--locked", f.locked, "--overrides")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "total_unach_count=2\n") || !strings.Contains(out, "- Besiege (Windows): 20 GS") {
		t.Fatalf("expected override games to count, got:\n%s", out)
	}
}

func TestCheckUnachMissingFile(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "check-unach", "--locked", filepath.Join(f.dir, "nope.csv"))
	if err == nil || !strings.Contains(err.Error(), "your locked export") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigTemplateDecodes(t *testing.T) {
	newFixture(t)
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.Rank.IncludeDLC != nil || cfg.Paths.OutDir != nil {
		t.Fatalf("expected commented template to set nothing, got %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("[rank]\ntop = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "[rank]\ntop = 3\n" {
		t.Fatalf("expected existing config to be kept")
	}
}

func TestViewMissingReport(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, "view", "--out-dir", f.outDir)
	if err == nil || !strings.Contains(err.Error(), "run achrank first") {
		t.Fatalf("unexpected error: %v", err)
	}
}
