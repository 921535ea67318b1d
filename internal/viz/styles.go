package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	help    lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	pending lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		label: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(12),
		value: lipgloss.NewStyle().
			Foreground(t.Accent),
		help: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			MarginTop(1),
		pass:    lipgloss.NewStyle().Bold(true).Foreground(t.Pass),
		fail:    lipgloss.NewStyle().Bold(true).Foreground(t.Fail),
		pending: lipgloss.NewStyle().Foreground(t.Pending),
	}
}

// verdict renders a latched verdict badge.
func (s styles) verdict(name string, decided bool) string {
	switch {
	case !decided:
		return s.pending.Render("… " + name)
	case name == "pass":
		return s.pass.Render("✔ PASS")
	default:
		return s.fail.Render("✘ " + strings.ToUpper(name))
	}
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values as block characters, sampled to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	sc := newScale(values, len(chars))

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		b.WriteRune(chars[sc.at(values[i*step])])
	}
	return b.String()
}
