// Package model defines shared data structures.
package model

// DefaultUnachievableGames lists delisted titles whose locked achievements are
// always treated as unachievable.
var DefaultUnachievableGames = []string{
	"Besiege (Windows)",
	"Second Extinction",
}

// Settings controls how achievements are counted during a run.
type Settings struct {
	IncludeDLC               bool
	CountUnachievableInTotal bool
	UnachievableGames        []string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		IncludeDLC:               true,
		CountUnachievableInTotal: true,
		UnachievableGames:        append([]string(nil), DefaultUnachievableGames...),
	}
}

// Achievement is a single parsed export row.
type Achievement struct {
	Game         string
	DLC          string
	Gamerscore   int
	TAScore      int
	Ratio        *float64
	UnlockDate   string
	Unachievable bool
	Title        string
}

// IsDLC reports whether the achievement belongs to a DLC pack.
func (a Achievement) IsDLC() bool {
	return a.DLC != ""
}

// Counters accumulates achievement totals.
type Counters struct {
	Ach    int
	GS     int
	TA     int
	DLCAch int
}

// Add counts one achievement.
func (c *Counters) Add(a Achievement) {
	c.Ach++
	c.GS += a.Gamerscore
	c.TA += a.TAScore
	if a.IsDLC() {
		c.DLCAch++
	}
}

// GameSummary accumulates everything known about one game.
type GameSummary struct {
	Name string

	Earned       Counters
	Locked       Counters
	Unachievable Counters

	EarnedRatios           []float64
	LockedAchievableRatios []float64

	EarnedAchievements []Achievement
	LockedAchievements []Achievement
	LockedAchievable   []Achievement
}

// Started reports whether anything has been earned in the game.
func (g *GameSummary) Started() bool {
	return g.Earned.GS > 0 || g.Earned.Ach > 0
}

// Library maps game names to summaries and remembers first-seen order.
type Library struct {
	names []string
	games map[string]*GameSummary
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{games: map[string]*GameSummary{}}
}

// Game returns the summary for name, creating a zeroed one on first use.
func (l *Library) Game(name string) *GameSummary {
	if g, ok := l.games[name]; ok {
		return g
	}
	g := &GameSummary{Name: name}
	l.games[name] = g
	l.names = append(l.names, name)
	return g
}

// Lookup returns the summary for name without creating it.
func (l *Library) Lookup(name string) (*GameSummary, bool) {
	g, ok := l.games[name]
	return g, ok
}

// Games returns all summaries in first-seen order.
func (l *Library) Games() []*GameSummary {
	out := make([]*GameSummary, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.games[name])
	}
	return out
}

// Len returns the number of games.
func (l *Library) Len() int {
	return len(l.names)
}

// GameInfo is the ranking view of one in-progress game.
type GameInfo struct {
	Game           string
	Completion     float64
	RemainingAch   int
	RemainingGS    int
	UnachAch       int
	DLCRemaining   int
	AvgLockedRatio *float64
	EarnedAch      int
	TotalAch       int
	EarnedGS       int
	TotalGS        int
}

// EarnedTotals holds profile-wide earned sums.
type EarnedTotals struct {
	GS int
	TA int
}
