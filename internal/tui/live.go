// Package tui streams driver frames as plain text, for terminals and pipes
// where the full-screen view is unavailable.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/simlab/internal/sim"
)

const (
	width       = 41
	height      = 11
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer implements sim.Observer. Every stride-th frame it writes one
// block: a sketch for swinging entities and a status line for every view.
type LiveRenderer struct {
	out    io.Writer
	stride int
	ansi   bool
	canvas [][]rune
}

// NewLiveRenderer writes to out every stride frames. With ansi set each
// block redraws the screen in place.
func NewLiveRenderer(out io.Writer, stride int, ansi bool) *LiveRenderer {
	if stride < 1 {
		stride = 1
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:    out,
		stride: stride,
		ansi:   ansi,
		canvas: canvas,
	}
}

func (r *LiveRenderer) OnFrame(frame int, views []sim.View) {
	if frame%r.stride != 0 {
		return
	}

	var b strings.Builder
	if r.ansi {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "frame %d\n", frame)

	for _, v := range views {
		if _, ok := v.(sim.Verdict); !ok && r.ansi {
			r.clear()
			r.drawSwing(v)
			for _, row := range r.canvas {
				b.WriteString("  " + string(row) + "\n")
			}
		}
		b.WriteString(statusLine(v) + "\n")
	}

	io.WriteString(r.out, b.String())
}

func (r *LiveRenderer) Start() {
	if r.ansi {
		io.WriteString(r.out, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.ansi {
		io.WriteString(r.out, showCursor)
	}
}

func statusLine(v sim.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-14s t=%7.3fs", v.Label(), v.Elapsed())
	cur := v.Current()
	for i, ch := range v.Channels() {
		if i < len(cur) {
			fmt.Fprintf(&b, " %s=%+.3f", ch, cur[i])
		}
	}
	if vd, ok := v.(sim.Verdict); ok {
		name, _ := vd.Verdict()
		fmt.Fprintf(&b, " [%s]", strings.ToUpper(name))
	}
	return b.String()
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

type bobber interface {
	Bob() (x, y float64)
}

// drawSwing sketches a rod towards the view's bob, or at the angle held in
// its first channel when it has none. Character cells are about twice as
// tall as wide, hence the x stretch.
func (r *LiveRenderer) drawSwing(v sim.View) {
	var sx, sy float64
	if b, ok := v.(bobber); ok {
		x, y := b.Bob()
		l := math.Hypot(x, y)
		if l == 0 {
			return
		}
		sx, sy = x/l, -y/l
	} else {
		cur := v.Current()
		if len(cur) == 0 {
			return
		}
		sx, sy = math.Sin(cur[0]), math.Cos(cur[0])
	}
	cx, cy := width/2, height/2
	length := float64(height/2 - 1)
	bx := cx + int(math.Round(2*length*sx))
	by := cy + int(math.Round(length*sy))

	r.line(cx, cy, bx, by, '.')
	r.set(cx, cy, '+')
	r.set(bx, by, 'O')
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
