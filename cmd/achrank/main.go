// Package main provides the CLI entrypoint for achrank.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/achrank/internal/config"
	"github.com/verte-zerg/achrank/internal/export"
	"github.com/verte-zerg/achrank/internal/ingest"
	"github.com/verte-zerg/achrank/internal/model"
	"github.com/verte-zerg/achrank/internal/stats"
	"github.com/verte-zerg/achrank/internal/statsui"
	"github.com/verte-zerg/achrank/internal/store"
)

const (
	defaultUnlockedPath = "data/unlocked.csv"
	defaultLockedPath   = "data/locked.csv"
	defaultOutDir       = "."
	defaultTop          = 15
	defaultCheckTop     = 30
)

var (
	verbose bool

	rankUnlocked   string
	rankLocked     string
	rankOutDir     string
	rankIncludeDLC bool
	rankCountUnach bool
	rankUnachGames []string
	rankTop        int

	checkLocked     string
	checkTop        int
	checkOverrides  bool
	checkUnachGames []string

	viewOutDir string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "achrank",
		Short:         "Rank in-progress games by how close they are to completion",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
		RunE: runRankCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&rankUnlocked, "unlocked", defaultUnlockedPath, "unlocked achievements export (CSV)")
	rootCmd.Flags().StringVar(&rankLocked, "locked", defaultLockedPath, "locked achievements export (CSV)")
	rootCmd.Flags().StringVar(&rankOutDir, "out-dir", defaultOutDir, "directory for main_stats.json and dlc_data.json")
	rootCmd.Flags().BoolVar(&rankIncludeDLC, "include-dlc", true, "include DLC achievements in per-game totals")
	rootCmd.Flags().BoolVar(&rankCountUnach, "count-unachievable", true, "count unachievable achievements as remaining")
	rootCmd.Flags().StringArrayVar(&rankUnachGames, "unachievable-game", model.DefaultUnachievableGames,
		"game whose locked achievements are all unachievable (repeatable)")
	rootCmd.Flags().IntVar(&rankTop, "top", defaultTop, "recommendations to print (0 disables)")

	rootCmd.AddCommand(newCheckUnachCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newViewCmd())

	return rootCmd
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runRankCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "unlocked", &rankUnlocked, fileCfg.Paths.Unlocked)
	applyStringConfig(cmd, "locked", &rankLocked, fileCfg.Paths.Locked)
	applyStringConfig(cmd, "out-dir", &rankOutDir, fileCfg.Paths.OutDir)
	applyBoolConfig(cmd, "include-dlc", &rankIncludeDLC, fileCfg.Rank.IncludeDLC)
	applyBoolConfig(cmd, "count-unachievable", &rankCountUnach, fileCfg.Rank.CountUnachievable)
	applyStringsConfig(cmd, "unachievable-game", &rankUnachGames, fileCfg.Rank.UnachievableGames)
	applyIntConfig(cmd, "top", &rankTop, fileCfg.Rank.Top)

	if rankTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if err := requireExport(rankUnlocked, "unlocked"); err != nil {
		return err
	}
	if err := requireExport(rankLocked, "locked"); err != nil {
		return err
	}

	settings := model.Settings{
		IncludeDLC:               rankIncludeDLC,
		CountUnachievableInTotal: rankCountUnach,
		UnachievableGames:        append([]string(nil), rankUnachGames...),
	}

	unlocked, err := ingest.LoadTable(rankUnlocked, ingest.UnlockedColumns)
	if err != nil {
		return fmt.Errorf("failed to load unlocked export: %w", err)
	}
	locked, err := ingest.LoadTable(rankLocked, ingest.LockedColumns)
	if err != nil {
		return fmt.Errorf("failed to load locked export: %w", err)
	}

	agg := ingest.NewAggregator(settings)
	logIngest("unlocked", agg.AddUnlocked(unlocked.Rows))
	logIngest("locked", agg.AddLocked(locked.Rows))
	lib := agg.Library()
	slog.Debug("aggregated games", slog.Int("games", lib.Len()))

	ranked := stats.Rank(lib, settings)
	profile := stats.SummarizeProfile(lib, settings, func() (model.EarnedTotals, error) {
		return ingest.SumUnlockedFile(rankUnlocked)
	})
	if profile.EarnedErr != nil {
		slog.Warn("using aggregated earned totals",
			slog.String("path", rankUnlocked),
			slog.Any("error", profile.EarnedErr))
	}
	dlcReport := stats.SummarizeDLC(lib, settings)

	mainPath := filepath.Join(rankOutDir, export.MainStatsFile)
	if err := export.WriteJSON(mainPath, export.BuildMainStats(profile, ranked, settings)); err != nil {
		return err
	}
	slog.Info("wrote report", slog.String("path", mainPath))
	dlcPath := filepath.Join(rankOutDir, export.DLCDataFile)
	if err := export.WriteJSON(dlcPath, export.BuildDLCData(dlcReport)); err != nil {
		return err
	}
	slog.Info("wrote report", slog.String("path", dlcPath))

	if rankTop == 0 {
		return nil
	}
	if err := stats.RenderRecommendations(cmd.OutOrStdout(), ranked, rankTop, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func requireExport(path, kind string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("missing %s (your %s export)", path, kind)
		}
		return fmt.Errorf("failed to stat %s export: %w", kind, err)
	}
	return nil
}

func logIngest(kind string, st ingest.IngestStats) {
	slog.Debug("ingested export",
		slog.String("export", kind),
		slog.Int("rows", st.Rows),
		slog.Int("added", st.Added),
		slog.Int("skipped_dlc", st.SkippedDLC),
		slog.Int("skipped_undated", st.SkippedNoDate))
}

func newCheckUnachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-unach",
		Short: "Report unachievable achievements in the locked export",
		Args:  cobra.NoArgs,
		RunE:  runCheckUnachCmd,
	}
	cmd.Flags().StringVar(&checkLocked, "locked", defaultLockedPath, "locked achievements export (CSV)")
	cmd.Flags().IntVar(&checkTop, "top", defaultCheckTop, "games to list per ranking")
	cmd.Flags().BoolVar(&checkOverrides, "overrides", false, "also count games marked unachievable by name")
	cmd.Flags().StringArrayVar(&checkUnachGames, "unachievable-game", model.DefaultUnachievableGames,
		"game whose locked achievements are all unachievable (repeatable, with --overrides)")
	return cmd
}

func runCheckUnachCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "locked", &checkLocked, fileCfg.Paths.Locked)
	applyStringsConfig(cmd, "unachievable-game", &checkUnachGames, fileCfg.Rank.UnachievableGames)
	if checkTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if err := requireExport(checkLocked, "locked"); err != nil {
		return err
	}

	// The diagnostic reads whatever columns are present.
	table, err := ingest.LoadTable(checkLocked, nil)
	if err != nil {
		return fmt.Errorf("failed to load locked export: %w", err)
	}
	var policy *ingest.Policy
	if checkOverrides {
		p := ingest.NewPolicy(checkUnachGames)
		policy = &p
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Warn("failed to close db", slog.Any("error", cerr))
		}
	}()

	ctx := context.Background()
	if err := st.InsertLocked(ctx, lockedRows(table.Rows, policy)); err != nil {
		return fmt.Errorf("failed to store locked rows: %w", err)
	}
	report, err := stats.BuildUnachReport(ctx, st, checkTop)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderUnachReport(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// lockedRows converts export rows for the diagnostic store. A nil policy
// honours only the explicit per-row flag.
func lockedRows(rows []ingest.Row, policy *ingest.Policy) []store.LockedRow {
	out := make([]store.LockedRow, 0, len(rows))
	for _, row := range rows {
		rec := ingest.ParseRecord(row)
		unach := rec.Unachievable
		if policy != nil {
			unach = policy.Unachievable(rec)
		}
		out = append(out, store.LockedRow{
			Game:         rec.Game,
			Gamerscore:   rec.Gamerscore,
			Unachievable: unach,
		})
	}
	return out
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless a config already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the last written report",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().StringVar(&viewOutDir, "out-dir", defaultOutDir, "directory holding main_stats.json and dlc_data.json")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "out-dir", &viewOutDir, fileCfg.Paths.OutDir)

	mainStats, err := export.LoadMainStats(filepath.Join(viewOutDir, export.MainStatsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no report in %s (run achrank first): %w", viewOutDir, err)
		}
		return err
	}
	dlcData, err := export.LoadDLCData(filepath.Join(viewOutDir, export.DLCDataFile))
	if err != nil {
		return err
	}

	program := tea.NewProgram(statsui.NewModel(mainStats, dlcData, viewOutDir), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringsConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	games := make([]string, 0, len(model.DefaultUnachievableGames))
	for _, g := range model.DefaultUnachievableGames {
		games = append(games, fmt.Sprintf("%q", g))
	}
	return fmt.Sprintf(`# achrank configuration
# Uncomment a value to enable it. CLI flags override config values.

[rank]
# include-dlc = true           # Include DLC achievements in per-game totals
# count-unachievable = true    # Count unachievable achievements as remaining
# unachievable-games = [%s]
# top = %d                     # Recommendations to print (0 disables)

[paths]
# unlocked = %q
# locked = %q
# out-dir = %q
`,
		strings.Join(games, ", "),
		defaultTop,
		defaultUnlockedPath,
		defaultLockedPath,
		defaultOutDir,
	)
}
