package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/simlab/internal/sim"
)

const (
	canvasWidth  = 28
	canvasHeight = 10
	traceWidth   = 40
	traceWindow  = 240
	// Beyond this many entities of one kind the view switches to a summary.
	detailLimit = 4
)

type TickMsg time.Time

// Model is the live terminal view. It advances the driver one frame per
// tick and renders entities only through sim.View.
type Model struct {
	ctx      context.Context
	driver   *sim.Driver
	interval time.Duration
	title    string
	running  bool
	phase    bool
	showHelp bool
	theme    int
	st       styles
	canvas   *Canvas
}

// NewModel ticks at the driver's frame rate.
func NewModel(ctx context.Context, d *sim.Driver, title string) Model {
	interval := time.Duration(float64(time.Second) / d.Config().FPS)
	return Model{
		ctx:      ctx,
		driver:   d,
		interval: interval,
		title:    title,
		running:  true,
		st:       newStyles(Themes[0]),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
	}
}

// WithTheme selects a theme by name; unknown names keep the default.
func (m Model) WithTheme(name string) Model {
	m.theme = ThemeIndex(name)
	m.st = newStyles(Themes[m.theme])
	return m
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running && !m.driver.Done() {
				m.driver.Frame(m.ctx)
			}
		case "p":
			m.phase = !m.phase
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.st = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		if m.running && !m.driver.Done() {
			m.driver.Frame(m.ctx)
		}
		return m, tick(m.interval)
	}
	return m, nil
}

func (m Model) status() string {
	switch {
	case m.driver.Done():
		return "FINISHED"
	case !m.running:
		return "PAUSED"
	default:
		return AnimatedSpinner(m.driver.Frames()) + " RUNNING"
	}
}

func (m Model) View() string {
	views := m.driver.Views()

	var b strings.Builder
	b.WriteString(m.st.header.Render(strings.ToUpper(m.title)))
	fmt.Fprintf(&b, "  %s  frame %d  dt %.4gs\n\n", m.status(), m.driver.Frames(), m.driver.Dt())

	byKind := make(map[string][]sim.View)
	var kinds []string
	for _, v := range views {
		if _, ok := byKind[v.Kind()]; !ok {
			kinds = append(kinds, v.Kind())
		}
		byKind[v.Kind()] = append(byKind[v.Kind()], v)
	}

	for _, kind := range kinds {
		group := byKind[kind]
		if len(group) > detailLimit {
			b.WriteString(m.summaryPanel(kind, group) + "\n")
			continue
		}
		panels := make([]string, 0, len(group))
		for _, v := range group {
			if _, ok := v.(sim.Verdict); ok {
				panels = append(panels, m.tracePanel(v))
			} else {
				panels = append(panels, m.swingPanel(v))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n")
	}

	b.WriteString(m.st.help.Render("space:pause  n:next frame  p:phase  t:theme  ?:help  q:quit"))
	if m.showHelp {
		b.WriteString("\n" + m.helpText())
	}
	return b.String()
}

// swingPanel draws a rotating entity: a rod from the pivot to a bob at the
// first channel's angle, or the phase plot of its first two channels.
func (m Model) swingPanel(v sim.View) string {
	m.canvas.Clear()
	chans := v.Channels()
	cur := v.Current()

	if m.phase && len(chans) >= 2 {
		m.canvas.Plot(tail(v.Trace(chans[0]), traceWindow), tail(v.Trace(chans[1]), traceWindow))
	} else if dx, dy, ok := rodDirection(v); ok {
		pw, ph := m.canvas.Pixels()
		cx, cy := pw/2, ph/2
		r := float64(min(pw, ph)) * 0.45
		bx := cx + int(math.Round(r*dx))
		by := cy + int(math.Round(r*dy))
		m.canvas.Disc(cx, cy, 0)
		m.canvas.DrawLine(cx, cy, bx, by)
		m.canvas.Disc(bx, by, 1)
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render(v.Label()) + "\n")
	b.WriteString(m.canvas.String())
	b.WriteString(m.st.label.Render("t") + m.st.value.Render(fmt.Sprintf("%.2fs", v.Elapsed())) + "\n")
	for i, ch := range chans {
		if i >= len(cur) {
			break
		}
		b.WriteString(m.st.label.Render(shortName(ch)) + m.st.value.Render(fmt.Sprintf("%+.3f", cur[i])) + "\n")
	}
	if len(chans) > 0 {
		b.WriteString(Sparkline(tail(v.Trace(chans[0]), traceWindow), canvasWidth))
	}
	return m.st.panel.Render(b.String())
}

type bobber interface {
	Bob() (x, y float64)
}

// rodDirection is the unit vector from pivot to bob in screen space, y down.
// Views without a bob position fall back to the angle in their first channel.
func rodDirection(v sim.View) (dx, dy float64, ok bool) {
	if b, isBob := v.(bobber); isBob {
		x, y := b.Bob()
		if l := math.Hypot(x, y); l > 0 {
			return x / l, -y / l, true
		}
	}
	cur := v.Current()
	if len(cur) == 0 {
		return 0, 0, false
	}
	return math.Sin(cur[0]), math.Cos(cur[0]), true
}

// tracePanel plots every channel of a decided-or-pending entity together.
func (m Model) tracePanel(v sim.View) string {
	chans := v.Channels()
	series := make([][]float64, 0, len(chans))
	for _, ch := range chans {
		if t := tail(v.Trace(ch), traceWindow); len(t) > 1 {
			series = append(series, t)
		}
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render(v.Label()) + "  ")
	name, decided := v.(sim.Verdict).Verdict()
	b.WriteString(m.st.verdict(name, decided) + "\n")

	if len(series) > 0 {
		colors := Themes[m.theme].Series
		opts := []asciigraph.Option{
			asciigraph.Height(8),
			asciigraph.Width(traceWidth),
			asciigraph.Precision(1),
			asciigraph.SeriesColors(
				asciigraph.AnsiColor(colors[0]),
				asciigraph.AnsiColor(colors[1]),
				asciigraph.AnsiColor(colors[2]),
			),
		}
		b.WriteString(asciigraph.PlotMany(series, opts...) + "\n")
	}

	cur := v.Current()
	for i, ch := range chans {
		if i >= len(cur) {
			break
		}
		b.WriteString(m.st.label.Render(ch) + m.st.value.Render(fmt.Sprintf("%6.2f V", cur[i])) + "\n")
	}
	b.WriteString(m.st.label.Render("t") + m.st.value.Render(fmt.Sprintf("%.3fs", v.Elapsed())))
	return m.st.panel.Render(b.String())
}

// summaryPanel condenses a large group into verdict counts and one glyph per
// entity.
func (m Model) summaryPanel(kind string, group []sim.View) string {
	var pass, fail, pending int
	var grid strings.Builder
	for i, v := range group {
		vd, ok := v.(sim.Verdict)
		if !ok {
			pending++
			grid.WriteString(m.st.pending.Render("·"))
		} else {
			name, decided := vd.Verdict()
			switch {
			case !decided:
				pending++
				grid.WriteString(m.st.pending.Render("·"))
			case name == "pass":
				pass++
				grid.WriteString(m.st.pass.Render("✔"))
			default:
				fail++
				grid.WriteString(m.st.fail.Render("✘"))
			}
		}
		if (i+1)%traceWidth == 0 {
			grid.WriteByte('\n')
		}
	}

	decided := float64(pass+fail) / float64(len(group))
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d entities\n", m.st.header.Render(strings.ToUpper(kind)), len(group))
	b.WriteString(grid.String() + "\n\n")
	b.WriteString(m.st.label.Render("pass") + m.st.pass.Render(fmt.Sprint(pass)) + "\n")
	b.WriteString(m.st.label.Render("fail") + m.st.fail.Render(fmt.Sprint(fail)) + "\n")
	b.WriteString(m.st.label.Render("pending") + m.st.pending.Render(fmt.Sprint(pending)) + "\n")
	b.WriteString(m.st.label.Render("decided") + ProgressBar(decided, traceWidth-12))
	return m.st.panel.Render(b.String())
}

func (m Model) helpText() string {
	return m.st.panel.Render(strings.Join([]string{
		"Space  pause or resume stepping",
		"N      advance one frame while paused",
		"P      toggle pendulum phase plot",
		"T      cycle themes (" + strings.Join(ThemeNames(), ", ") + ")",
		"Q      quit",
	}, "\n"))
}

// Run drives the model until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func shortName(ch string) string {
	if i := strings.LastIndex(ch, "_"); i >= 0 && i+1 < len(ch) {
		return ch[i+1:]
	}
	return ch
}
