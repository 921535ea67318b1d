package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

type PhasePoint struct{ X, Y float64 }

// PhasePortrait2D holds paired samples for a 2D phase plot.
type PhasePortrait2D struct {
	Points []PhasePoint
}

// NewPhasePortrait pairs xs and ys index by index, truncating to the
// shorter of the two. Pairs with a non-finite coordinate are dropped.
func NewPhasePortrait(xs, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	points := make([]PhasePoint, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			points = append(points, PhasePoint{X: xs[i], Y: ys[i]})
		}
	}
	return &PhasePortrait2D{Points: points}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// densityGlyphs shade a cell by how many samples landed in it, so a decaying
// spiral shows where the trajectory settles.
var densityGlyphs = []rune{'·', '•', '●'}

const lastGlyph = '◆'

// ASCII plots the portrait on a width x height character grid. The most
// recent sample is drawn as a diamond; axes are drawn where zero is in range.
func (portrait *PhasePortrait2D) ASCII(width, height int) string {
	if width < 2 || height < 2 || portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	x0, x1 := padded(floats.Min(xs), floats.Max(xs))
	y0, y1 := padded(floats.Min(ys), floats.Max(ys))

	col := func(x float64) int { return int((x - x0) / (x1 - x0) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-y0)/(y1-y0)*float64(height-1)) }

	hits := make([][]int, height)
	for r := range hits {
		hits[r] = make([]int, width)
	}
	for i := range xs {
		hits[row(ys[i])][col(xs[i])]++
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = make([]rune, width)
		for c, n := range hits[r] {
			grid[r][c] = densityGlyph(n)
		}
	}

	if x0 <= 0 && x1 >= 0 {
		c := col(0)
		for r := range grid {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if y0 <= 0 && y1 >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	last := len(xs) - 1
	grid[row(ys[last])][col(xs[last])] = lastGlyph

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func densityGlyph(n int) rune {
	switch {
	case n == 0:
		return ' '
	case n == 1:
		return densityGlyphs[0]
	case n < 4:
		return densityGlyphs[1]
	default:
		return densityGlyphs[2]
	}
}

// padded widens [lo, hi] by 10% per side, and to unit width when flat.
func padded(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
