package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Pass    lipgloss.Color
	Fail    lipgloss.Color
	Pending lipgloss.Color
	// Series colours for supply, regulated and enable traces, as ANSI
	// indices understood by asciigraph.
	Series [3]int
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Muted:   lipgloss.Color("#666666"),
		Pass:    lipgloss.Color("#00ff00"),
		Fail:    lipgloss.Color("#ff0000"),
		Pending: lipgloss.Color("#ff8800"),
		Series:  [3]int{51, 201, 226},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Muted:   lipgloss.Color("#005500"),
		Pass:    lipgloss.Color("#88ff88"),
		Fail:    lipgloss.Color("#ff0000"),
		Pending: lipgloss.Color("#ffff00"),
		Series:  [3]int{46, 82, 118},
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Muted:   lipgloss.Color("#4488aa"),
		Pass:    lipgloss.Color("#00ff88"),
		Fail:    lipgloss.Color("#ff4444"),
		Pending: lipgloss.Color("#ffcc00"),
		Series:  [3]int{39, 220, 203},
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// ThemeIndex returns the position of the named theme, or 0.
func ThemeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
