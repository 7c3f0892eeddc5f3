// Package render draws a workflow document onto a rune-grid canvas through
// the viewport transform and answers screen hit tests, so the application
// layer never does coordinate math of its own.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Canvas is a fixed-size grid of cells, each holding a rune and an optional
// foreground color. Drawing off the grid is silently clipped.
type Canvas struct {
	width, height int
	cells         [][]rune
	colors        [][]string
}

// NewCanvas returns a blank canvas of the given size in cells.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{
		width:  width,
		height: height,
		cells:  make([][]rune, height),
		colors: make([][]string, height),
	}
	for y := 0; y < height; y++ {
		c.cells[y] = make([]rune, width)
		c.colors[y] = make([]string, width)
		for x := 0; x < width; x++ {
			c.cells[y][x] = ' '
		}
	}
	return c
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// Set places a rune at a cell with a foreground color ("" for default).
func (c *Canvas) Set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.colors[y][x] = color
}

// DrawText writes a string starting at a cell, clipping at the right edge.
// Wide runes occupy two cells.
func (c *Canvas) DrawText(x, y int, s string, color string) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		c.Set(x, y, r, color)
		if w == 2 {
			c.Set(x+1, y, ' ', color)
		}
		x += w
	}
}

// DrawBox draws a rectangle border. Selected boxes use heavy corners so the
// active node reads at a glance even without color.
func (c *Canvas) DrawBox(x, y, w, h int, color string, selected bool) {
	if w < 2 || h < 2 {
		return
	}
	tl, tr, bl, br := '╭', '╮', '╰', '╯'
	hr, vr := '─', '│'
	if selected {
		tl, tr, bl, br = '┏', '┓', '┗', '┛'
		hr, vr = '━', '┃'
	}

	for i := 1; i < w-1; i++ {
		c.Set(x+i, y, hr, color)
		c.Set(x+i, y+h-1, hr, color)
	}
	for j := 1; j < h-1; j++ {
		c.Set(x, y+j, vr, color)
		c.Set(x+w-1, y+j, vr, color)
	}
	c.Set(x, y, tl, color)
	c.Set(x+w-1, y, tr, color)
	c.Set(x, y+h-1, bl, color)
	c.Set(x+w-1, y+h-1, br, color)
}

// DrawHDivider draws a horizontal rule inside a box, joining its side
// borders.
func (c *Canvas) DrawHDivider(x, y, w int, color string) {
	if w < 2 {
		return
	}
	c.Set(x, y, '├', color)
	for i := 1; i < w-1; i++ {
		c.Set(x+i, y, '─', color)
	}
	c.Set(x+w-1, y, '┤', color)
}

// String renders the canvas with ANSI colors, one styled run per color
// change so rows stay compact.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			if c.colors[y][x] != runColor {
				flush()
				runColor = c.colors[y][x]
			}
			run.WriteRune(c.cells[y][x])
		}
		flush()
		if y < c.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
