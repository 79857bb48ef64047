// Package export shapes reports into the JSON documents read by the viewer.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/achrank/internal/model"
	"github.com/verte-zerg/achrank/internal/stats"
)

// File names written into the output directory.
const (
	MainStatsFile = "main_stats.json"
	DLCDataFile   = "dlc_data.json"
)

// Recommendation is one ranked game. Completion is a percentage.
type Recommendation struct {
	Game           string   `json:"game"`
	Completion     float64  `json:"completion"`
	RemainingAch   int      `json:"remaining_ach"`
	RemainingGS    int      `json:"remaining_gs"`
	AvgLockedRatio *float64 `json:"avg_locked_ratio"`
	UnachAch       int      `json:"unach_ach"`
	DLCRemaining   int      `json:"dlc_remaining"`
	EarnedAch      int      `json:"earned_ach"`
	TotalAch       int      `json:"total_ach"`
	EarnedGS       int      `json:"earned_gs"`
	TotalGS        int      `json:"total_gs"`
}

// SettingsEcho records the toggles a document was produced with.
type SettingsEcho struct {
	IncludeDLC               bool `json:"include_dlc"`
	CountUnachievableInTotal bool `json:"count_unachievable_in_total"`
}

// MainStats is the main_stats.json document.
type MainStats struct {
	ProfileSummary    stats.ProfileSummary     `json:"profile_summary"`
	CompletionBuckets []stats.CompletionBucket `json:"completion_buckets"`
	Recommendations   []Recommendation         `json:"recommendations"`
	BlockedGames      stats.BlockedGames       `json:"blocked_games"`
	DLCOnlyGames      []stats.DLCOnlyGame      `json:"dlc_only_games"`
	AllGames          []stats.GameOverview     `json:"all_games"`
	Settings          SettingsEcho             `json:"settings"`
}

// DLCData is the dlc_data.json document.
type DLCData struct {
	Summary      stats.DLCSummary              `json:"summary"`
	OverallStats stats.DLCOverall              `json:"overall_stats"`
	DLCs         []stats.DLCPack               `json:"dlcs"`
	Games        map[string][]stats.DLCPack    `json:"games"`
	GameStats    map[string]stats.DLCGameStats `json:"game_stats"`
}

// BuildMainStats assembles the main document from the profile and ranking.
func BuildMainStats(p stats.Profile, ranked []model.GameInfo, s model.Settings) MainStats {
	recs := make([]Recommendation, 0, len(ranked))
	for _, info := range ranked {
		recs = append(recs, Recommendation{
			Game:           info.Game,
			Completion:     info.Completion * 100,
			RemainingAch:   info.RemainingAch,
			RemainingGS:    info.RemainingGS,
			AvgLockedRatio: info.AvgLockedRatio,
			UnachAch:       info.UnachAch,
			DLCRemaining:   info.DLCRemaining,
			EarnedAch:      info.EarnedAch,
			TotalAch:       info.TotalAch,
			EarnedGS:       info.EarnedGS,
			TotalGS:        info.TotalGS,
		})
	}

	doc := MainStats{
		ProfileSummary:    p.Summary,
		CompletionBuckets: p.Buckets,
		Recommendations:   recs,
		BlockedGames:      p.Blocked,
		DLCOnlyGames:      p.DLCOnly,
		AllGames:          p.AllGames,
		Settings: SettingsEcho{
			IncludeDLC:               s.IncludeDLC,
			CountUnachievableInTotal: s.CountUnachievableInTotal,
		},
	}
	if doc.CompletionBuckets == nil {
		doc.CompletionBuckets = []stats.CompletionBucket{}
	}
	if doc.BlockedGames.Games == nil {
		doc.BlockedGames.Games = []stats.BlockedGame{}
	}
	if doc.DLCOnlyGames == nil {
		doc.DLCOnlyGames = []stats.DLCOnlyGame{}
	}
	if doc.AllGames == nil {
		doc.AllGames = []stats.GameOverview{}
	}
	return doc
}

// BuildDLCData assembles the DLC document.
func BuildDLCData(r stats.DLCReport) DLCData {
	doc := DLCData{
		Summary:      r.Summary,
		OverallStats: r.Overall,
		DLCs:         r.Packs,
		Games:        r.ByGame,
		GameStats:    r.GameStats,
	}
	if doc.DLCs == nil {
		doc.DLCs = []stats.DLCPack{}
	}
	if doc.Games == nil {
		doc.Games = map[string][]stats.DLCPack{}
	}
	if doc.GameStats == nil {
		doc.GameStats = map[string]stats.DLCGameStats{}
	}
	return doc
}

// WriteJSON writes v to path with two-space indentation. The file is replaced
// atomically so a failed write never leaves a truncated document behind.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			// Best-effort cleanup of the partial file.
			_ = os.Remove(tmpName)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// LoadMainStats reads a main_stats.json document.
func LoadMainStats(path string) (MainStats, error) {
	var doc MainStats
	if err := readJSON(path, &doc); err != nil {
		return MainStats{}, err
	}
	return doc, nil
}

// LoadDLCData reads a dlc_data.json document.
func LoadDLCData(path string) (DLCData, error) {
	var doc DLCData
	if err := readJSON(path, &doc); err != nil {
		return DLCData{}, err
	}
	return doc, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
