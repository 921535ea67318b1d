package viz

import (
	"math"
	"strings"
)

const brailleBlank = 0x2800

// dotBit maps a sub-pixel inside a 2x4 braille cell to its bit in the
// Unicode pattern. Rows top to bottom, columns left then right.
var dotBit = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid addressed in braille sub-pixels, so its
// drawable area is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	dots          []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, dots: make([]uint8, w*h)}
}

// Pixels returns the drawable size in sub-pixels.
func (c *Canvas) Pixels() (w, h int) { return c.Width * 2, c.Height * 4 }

// Set lights the sub-pixel (x, y); out-of-range points are ignored.
func (c *Canvas) Set(x, y int) {
	pw, ph := c.Pixels()
	if x < 0 || y < 0 || x >= pw || y >= ph {
		return
	}
	c.dots[(y/4)*c.Width+x/2] |= dotBit[y%4][x%2]
}

// Cell returns the rune at character position (col, row).
func (c *Canvas) Cell(col, row int) rune {
	return brailleBlank + rune(c.dots[row*c.Width+col])
}

func (c *Canvas) Clear() { clear(c.dots) }

// DrawLine steps along the longer axis, one sub-pixel at a time.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	n := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if n == 0 {
		c.Set(x0, y0)
		return
	}
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		c.Set(x0+int(math.Round(dx*f)), y0+int(math.Round(dy*f)))
	}
}

// Disc fills a circle of radius r around (x, y).
func (c *Canvas) Disc(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r+r {
				c.Set(x+dx, y+dy)
			}
		}
	}
}

// Plot draws the polyline through (xs[i], ys[i]) scaled to fill the canvas.
// Y grows upward.
func (c *Canvas) Plot(xs, ys []float64) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}
	sx := newScale(xs[:n], c.Width*2)
	sy := newScale(ys[:n], c.Height*4)
	top := c.Height*4 - 1

	px, py := sx.at(xs[0]), top-sy.at(ys[0])
	c.Set(px, py)
	for i := 1; i < n; i++ {
		qx, qy := sx.at(xs[i]), top-sy.at(ys[i])
		c.DrawLine(px, py, qx, qy)
		px, py = qx, qy
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (c.Width*3 + 1))
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(c.Cell(col, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// scale maps a data range onto [0, size-1]. A flat range is centred.
type scale struct {
	lo, span float64
	size     int
}

func newScale(vs []float64, size int) scale {
	lo, hi := vs[0], vs[0]
	for _, v := range vs {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		lo -= 0.5
		hi += 0.5
	}
	return scale{lo: lo, span: hi - lo, size: size}
}

func (s scale) at(v float64) int {
	i := int((v - s.lo) / s.span * float64(s.size-1))
	return max(0, min(i, s.size-1))
}
