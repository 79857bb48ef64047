// Package statsui provides the Bubble Tea report viewer.
package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/verte-zerg/achrank/internal/export"
	"github.com/verte-zerg/achrank/internal/stats"
)

const (
	tabOverview = iota
	tabRecommendations
	tabBlocked
	tabDLC
	tabAllGames
	tabCount
)

const minFlexWidth = 12

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// tabData holds the full row set of a table tab. names[i] is the game of rows[i].
type tabData struct {
	columns []table.Column
	flex    int
	names   []string
	rows    []table.Row
}

// gameNames adapts a name list to fuzzy.Source.
type gameNames []string

func (g gameNames) String(i int) string { return g[i] }
func (g gameNames) Len() int            { return len(g) }

// Model implements the Bubble Tea report viewer.
type Model struct {
	main   export.MainStats
	dlc    export.DLCData
	source string

	tabs      []string
	activeTab int
	overview  viewport.Model
	data      [tabCount]tabData
	tables    [tabCount]table.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string
}

// NewModel constructs a viewer over loaded report documents. source names
// the directory they were read from.
func NewModel(main export.MainStats, dlc export.DLCData, source string) *Model {
	m := &Model{
		main:     main,
		dlc:      dlc,
		source:   source,
		tabs:     []string{"Overview", "Recommendations", "Blocked", "DLC", "All Games"},
		overview: viewport.New(0, 0),
	}
	m.filterInput = newFilterInput("Filter: ")
	m.data[tabRecommendations] = recommendationsData(main.Recommendations)
	m.data[tabBlocked] = blockedData(main.BlockedGames)
	m.data[tabDLC] = dlcData(dlc.DLCs)
	m.data[tabAllGames] = allGamesData(main.AllGames)
	for tab := tabRecommendations; tab < tabCount; tab++ {
		m.tables[tab] = buildTable(m.data[tab].columns, m.data[tab].rows, 0, 1)
	}
	m.applyFilter()
	m.renderOverview()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "esc":
			if m.filter != "" {
				m.filter = ""
				m.filterInput.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabOverview {
				m.overview.GotoTop()
			} else {
				m.tables[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabOverview {
				m.overview.GotoBottom()
			} else {
				m.tables[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabOverview {
				m.overview, cmd = m.overview.Update(msg)
				return m, cmd
			}
			m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "game name"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for tab := tabRecommendations; tab < tabCount; tab++ {
		m.tables[tab].SetColumns(fitColumns(m.data[tab].columns, m.data[tab].flex, m.width))
		m.setTableSize(tab, m.width, bodyHeight)
	}
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = maxInt(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	for tab := tabRecommendations; tab < tabCount; tab++ {
		if tab == m.activeTab {
			m.tables[tab].Focus()
		} else {
			m.tables[tab].Blur()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLine(m.renderSettingsSummary(), m.width)
}

func (m *Model) renderSettingsSummary() string {
	filter := "none"
	if m.filter != "" {
		filter = m.filter
	}
	summary := fmt.Sprintf("Source: %s  include_dlc=%t  count_unachievable=%t  filter=%s",
		m.source,
		m.main.Settings.IncludeDLC,
		m.main.Settings.CountUnachievableInTotal,
		filter,
	)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Clear: esc  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabOverview {
		return fitLines(m.overview.View(), m.width, height)
	}
	if len(m.data[m.activeTab].rows) == 0 {
		return fitLines(emptyMessage(m.activeTab), m.width, height)
	}
	if len(m.tables[m.activeTab].Rows()) == 0 {
		return fitLines(fmt.Sprintf("No games match %q.", m.filter), m.width, height)
	}
	view := tableMutedStyle.Render(m.tables[m.activeTab].View())
	return fitLines(view, m.width, height)
}

func emptyMessage(tab int) string {
	switch tab {
	case tabRecommendations:
		return "No games left to finish."
	case tabBlocked:
		return "No games with unachievable achievements."
	case tabDLC:
		return "No DLC packs found."
	default:
		return "No games found."
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterInput.SetValue(m.filter)
	m.filterInput.CursorEnd()
	return m, m.filterInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.filter = ""
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := strings.TrimSpace(m.filterInput.Value()); value != m.filter {
		m.filter = value
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter narrows every table tab to rows whose game fuzzy-matches the
// current filter, best match first.
func (m *Model) applyFilter() {
	for tab := tabRecommendations; tab < tabCount; tab++ {
		m.tables[tab].SetRows(filterRows(m.data[tab], m.filter))
		m.tables[tab].GotoTop()
	}
}

func filterRows(data tabData, pattern string) []table.Row {
	if pattern == "" {
		return data.rows
	}
	matches := fuzzy.FindFrom(pattern, gameNames(data.names))
	rows := make([]table.Row, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, data.rows[match.Index])
	}
	return rows
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.main, m.dlc, width))
}

func renderOverview(main export.MainStats, dlc export.DLCData, width int) string {
	sections := []string{
		renderSummaryCards(main.ProfileSummary, width),
		renderBuckets(main, width),
		renderDLCSummary(main, dlc),
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(s stats.ProfileSummary, width int) string {
	cards := []string{
		metricCard("Games", humanize.Comma(int64(s.TotalGames))),
		metricCard("Completed", humanize.Comma(int64(s.CompletedGames))),
		metricCard("Gamerscore", fmt.Sprintf("%s / %s",
			humanize.Comma(int64(s.TotalGSEarned)), humanize.Comma(int64(s.TotalGSPossible)))),
		metricCard("GS Completion", fmt.Sprintf("%.1f%%", s.GSCompletionPct)),
		metricCard("TrueAchievement", fmt.Sprintf("%s / %s",
			humanize.Comma(int64(s.TotalTAEarned)), humanize.Comma(int64(s.TotalTAPossible)))),
		metricCard("TA Ratio", formatRatio(s.OverallTARatioEarned)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderBuckets(main export.MainStats, width int) string {
	lines := []string{sectionStyle.Render(fmt.Sprintf("Completion (%d games)", main.ProfileSummary.StartedGames))}
	barWidth := maxInt(10, minInt(width-26, 50))
	for i := len(main.CompletionBuckets) - 1; i >= 0; i-- {
		b := main.CompletionBuckets[i]
		filled := int(b.Percentage / 100 * float64(barWidth))
		lines = append(lines, fmt.Sprintf("%-7s %5d %5.1f%% %s",
			b.Label, b.Count, b.Percentage, barStyle.Render(strings.Repeat("█", filled))))
	}
	return strings.Join(lines, "\n")
}

func renderDLCSummary(main export.MainStats, dlc export.DLCData) string {
	s := dlc.Summary
	lines := []string{
		sectionStyle.Render("DLC"),
		fmt.Sprintf("Packs: %d of %d completed", s.CompletedDLCs, s.TotalDLCs),
		fmt.Sprintf("Achievements: %s of %s",
			humanize.Comma(int64(s.CompletedDLCAchievements)), humanize.Comma(int64(s.TotalDLCAchievements))),
		fmt.Sprintf("Gamerscore: %s of %s",
			humanize.Comma(int64(s.CompletedDLCGamerscore)), humanize.Comma(int64(s.TotalDLCGamerscore))),
		"",
		sectionStyle.Render("Blocked"),
		fmt.Sprintf("%d games, %d unachievable (%s GS)",
			len(main.BlockedGames.Games), main.BlockedGames.TotalUnachCount,
			humanize.Comma(int64(main.BlockedGames.TotalUnachGS))),
		fmt.Sprintf("Only DLC left: %d games", len(main.DLCOnlyGames)),
	}
	return strings.Join(lines, "\n")
}

func recommendationsData(recs []export.Recommendation) tabData {
	data := tabData{
		columns: []table.Column{
			{Title: "#", Width: 4},
			{Title: "Game", Width: minFlexWidth},
			{Title: "Done", Width: 6},
			{Title: "Left", Width: 5},
			{Title: "GS Left", Width: 8},
			{Title: "Unach", Width: 5},
			{Title: "DLC", Width: 4},
			{Title: "Ratio", Width: 6},
		},
		flex: 1,
	}
	for i, r := range recs {
		data.names = append(data.names, r.Game)
		data.rows = append(data.rows, table.Row{
			fmt.Sprintf("%d", i+1),
			r.Game,
			fmt.Sprintf("%.1f%%", r.Completion),
			fmt.Sprintf("%d", r.RemainingAch),
			humanize.Comma(int64(r.RemainingGS)),
			fmt.Sprintf("%d", r.UnachAch),
			fmt.Sprintf("%d", r.DLCRemaining),
			formatRatio(r.AvgLockedRatio),
		})
	}
	return data
}

func blockedData(blocked stats.BlockedGames) tabData {
	data := tabData{
		columns: []table.Column{
			{Title: "Game", Width: minFlexWidth},
			{Title: "Unach", Width: 5},
			{Title: "Unach GS", Width: 8},
			{Title: "Locked", Width: 6},
			{Title: "Blocked", Width: 7},
		},
	}
	for _, g := range blocked.Games {
		fully := ""
		if g.FullyBlocked {
			fully = "fully"
		}
		data.names = append(data.names, g.Game)
		data.rows = append(data.rows, table.Row{
			g.Game,
			fmt.Sprintf("%d", g.UnachCount),
			humanize.Comma(int64(g.UnachGS)),
			fmt.Sprintf("%d", g.TotalLocked),
			fully,
		})
	}
	return data
}

func dlcData(packs []stats.DLCPack) tabData {
	data := tabData{
		columns: []table.Column{
			{Title: "Game", Width: minFlexWidth},
			{Title: "Pack", Width: 24},
			{Title: "Done", Width: 6},
			{Title: "Left", Width: 5},
			{Title: "GS", Width: 11},
			{Title: "Ratio", Width: 6},
		},
	}
	for _, p := range packs {
		data.names = append(data.names, p.Game)
		data.rows = append(data.rows, table.Row{
			p.Game,
			p.DLCName,
			fmt.Sprintf("%.1f%%", p.CompletionPct),
			fmt.Sprintf("%d", p.RemainingAch),
			fmt.Sprintf("%s/%s", humanize.Comma(int64(p.EarnedGS)), humanize.Comma(int64(p.TotalGS))),
			formatRatio(p.AvgOverallRatio),
		})
	}
	return data
}

func allGamesData(games []stats.GameOverview) tabData {
	data := tabData{
		columns: []table.Column{
			{Title: "Game", Width: minFlexWidth},
			{Title: "Done", Width: 6},
			{Title: "Ach", Width: 9},
			{Title: "GS", Width: 13},
			{Title: "Left", Width: 5},
			{Title: "Unach", Width: 5},
		},
	}
	for _, g := range games {
		data.names = append(data.names, g.Game)
		data.rows = append(data.rows, table.Row{
			g.Game,
			fmt.Sprintf("%.1f%%", g.CompletionPct),
			fmt.Sprintf("%d/%d", g.EarnedAch, g.TotalAch),
			fmt.Sprintf("%s/%s", humanize.Comma(int64(g.EarnedGS)), humanize.Comma(int64(g.TotalGS))),
			fmt.Sprintf("%d", g.RemainingAch),
			fmt.Sprintf("%d", g.LockedUnachAch),
		})
	}
	return data
}

func formatRatio(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *r)
}

// fitColumns widens column flex so the table spans width. Every cell carries
// one cell of right padding.
func fitColumns(cols []table.Column, flex, width int) []table.Column {
	out := append([]table.Column(nil), cols...)
	if width <= 0 || flex < 0 || flex >= len(out) {
		return out
	}
	used := 0
	for i, col := range out {
		if i == flex {
			continue
		}
		used += col.Width + 1
	}
	out[flex].Width = maxInt(minFlexWidth, width-used-1)
	return out
}

func buildTable(cols []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) setTableSize(tab, width, height int) {
	t := &m.tables[tab]
	t.SetWidth(width)
	t.SetHeight(maxInt(1, height-1))
	// The header border adds lines the table height does not count.
	target := maxInt(1, height)
	if viewHeight := lipgloss.Height(t.View()); viewHeight != target {
		t.SetHeight(maxInt(1, t.Height()+target-viewHeight))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
