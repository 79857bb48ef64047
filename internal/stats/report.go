package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/achrank/internal/model"
	"github.com/verte-zerg/achrank/internal/store"
)

// minGameColumn is the narrowest the game column gets before the table overflows.
const minGameColumn = 16

// UnachReport contains precomputed data for the unachievable diagnostic.
type UnachReport struct {
	Totals  store.Totals
	ByCount []store.GameUnach
	ByGS    []store.GameUnach
}

// BuildUnachReport queries the diagnostic store for totals and the top games.
func BuildUnachReport(ctx context.Context, st *store.Store, top int) (UnachReport, error) {
	totals, err := st.Totals(ctx)
	if err != nil {
		return UnachReport{}, err
	}
	byCount, err := st.TopByUnachCount(ctx, top)
	if err != nil {
		return UnachReport{}, err
	}
	byGS, err := st.TopByUnachGS(ctx, top)
	if err != nil {
		return UnachReport{}, err
	}
	return UnachReport{Totals: totals, ByCount: byCount, ByGS: byGS}, nil
}

// RenderUnachReport prints the diagnostic in a plain key=value and list format.
func RenderUnachReport(w io.Writer, r UnachReport) error {
	lines := []string{
		fmt.Sprintf("rows=%d", r.Totals.Rows),
		fmt.Sprintf("per_game_count=%d", r.Totals.Games),
		fmt.Sprintf("total_unach_count=%d", r.Totals.UnachCount),
		fmt.Sprintf("total_unach_gs=%d", r.Totals.UnachGS),
		"",
		"Top games by unachievable count:",
	}
	for _, g := range r.ByCount {
		lines = append(lines, fmt.Sprintf("- %s: %d unachievable (%d GS) of %d locked total",
			g.Game, g.UnachCount, g.UnachGS, g.LockedCount))
	}
	lines = append(lines, "", "Top games by unachievable GS:")
	for _, g := range r.ByGS {
		lines = append(lines, fmt.Sprintf("- %s: %d GS from %d unachievable (%d locked total)",
			g.Game, g.UnachGS, g.UnachCount, g.LockedCount))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRecommendations prints the first top ranked games as a table sized to width.
func RenderRecommendations(w io.Writer, ranked []model.GameInfo, top, width int) error {
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "No games left to finish.")
		return err
	}
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}

	headers := []string{"#", "Game", "Done", "Left", "GS Left", "Unach", "DLC", "Ratio"}
	rows := make([][]string, 0, top)
	for i, info := range ranked[:top] {
		avg := "-"
		if info.AvgLockedRatio != nil {
			avg = fmt.Sprintf("%.2f", *info.AvgLockedRatio)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			info.Game,
			fmt.Sprintf("%.1f%%", info.Completion*100),
			fmt.Sprintf("%d", info.RemainingAch),
			humanize.Comma(int64(info.RemainingGS)),
			fmt.Sprintf("%d", info.UnachAch),
			fmt.Sprintf("%d", info.DLCRemaining),
			avg,
		})
	}
	fitGameColumn(headers, rows, 1, width)

	if _, err := fmt.Fprintf(w, "Next up (%d of %d in progress)\n", top, len(ranked)); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// fitGameColumn truncates column col so that the table fits within width.
func fitGameColumn(headers []string, rows [][]string, col, width int) {
	if width <= 0 {
		return
	}
	other := 0
	for i, h := range headers {
		if i == col {
			continue
		}
		colWidth := displayWidth(h)
		for _, row := range rows {
			if w := displayWidth(row[i]); w > colWidth {
				colWidth = w
			}
		}
		other += colWidth + 1
	}
	limit := width - other
	if limit < minGameColumn {
		limit = minGameColumn
	}
	for _, row := range rows {
		row[col] = truncateCell(row[col], limit)
	}
}
