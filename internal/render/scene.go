package render

import (
	"math"

	"github.com/zjrosen/flowlens/internal/overlay"
	"github.com/zjrosen/flowlens/internal/typecolor"
	"github.com/zjrosen/flowlens/internal/view"
	"github.com/zjrosen/flowlens/internal/workflow"
)

// A terminal cell stands for this many world units at scale 1. The vertical
// factor is doubled because cells are roughly twice as tall as wide, which
// keeps node proportions close to the document's intent.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

const (
	selectedBorderColor = "#ffffff"
	labelColor          = "#999999"
	valueColor          = "#dddddd"
	dimFactor           = 0.45
)

// Scene renders documents and resolves pointer hits. It owns the color
// registry and the layout engine so node decoration stays consistent
// between frames.
type Scene struct {
	Colors  *typecolor.Registry
	Layouts *overlay.Engine
}

// NewScene returns a scene drawing with the given registry and layouts.
func NewScene(colors *typecolor.Registry, layouts *overlay.Engine) *Scene {
	return &Scene{Colors: colors, Layouts: layouts}
}

// CellToWorld converts a cell coordinate (its center) to world space.
func CellToWorld(cam view.Camera, cellX, cellY int) (float64, float64) {
	sx := (float64(cellX) + 0.5) * CellWidth
	sy := (float64(cellY) + 0.5) * CellHeight
	return cam.ToWorld(sx, sy)
}

// CellDisplacementToScreen converts a cell-space displacement to the
// screen-pixel displacement the camera and gesture math operate in.
func CellDisplacementToScreen(dx, dy float64) (float64, float64) {
	return dx * CellWidth, dy * CellHeight
}

// NodeAtCell returns the topmost node under a cell, or nil.
func (s *Scene) NodeAtCell(doc *workflow.Document, cam view.Camera, cellX, cellY int) *workflow.Node {
	wx, wy := CellToWorld(cam, cellX, cellY)
	return doc.NodeAt(wx, wy)
}

// InTitleBarCell reports whether the cell lies in the node's title bar.
func (s *Scene) InTitleBarCell(n *workflow.Node, cam view.Camera, cellX, cellY int) bool {
	wx, wy := CellToWorld(cam, cellX, cellY)
	return n.InTitleBar(wx, wy)
}

// nodeCellRect returns the node's screen rectangle in cells, title bar
// included.
func nodeCellRect(n *workflow.Node, cam view.Camera) (x, y, w, h int) {
	sx, sy := cam.ToScreen(n.X, n.Y-workflow.TitleBarHeight)
	ex, ey := cam.ToScreen(n.X+n.Width, n.Y+n.Height)

	x = int(math.Floor(sx / CellWidth))
	y = int(math.Floor(sy / CellHeight))
	w = int(math.Ceil(ex/CellWidth)) - x
	h = int(math.Ceil(ey/CellHeight)) - y
	if w < 4 {
		w = 4
	}
	if h < 3 {
		h = 3
	}
	return x, y, w, h
}

// Render draws the document through the camera onto a fresh canvas.
// selectedID marks the selected node (0 for none); while the selectable
// text overlay is shown for it, the canvas suppresses its own parameter
// text and draws boxes only, so the overlay's text is the single copy.
func (s *Scene) Render(doc *workflow.Document, cam view.Camera, selectedID int64, width, height int, overlayShown bool) *Canvas {
	c := NewCanvas(width, height)
	if doc == nil {
		return c
	}

	s.drawLinks(c, doc, cam)
	for _, n := range doc.Nodes {
		s.drawNode(c, n, cam, n.ID == selectedID, overlayShown && n.ID == selectedID)
	}
	return c
}

func (s *Scene) drawNode(c *Canvas, n *workflow.Node, cam view.Camera, selected, suppressText bool) {
	x, y, w, h := nodeCellRect(n, cam)
	if x+w < 0 || y+h < 0 || x >= c.Width() || y >= c.Height() {
		return
	}

	color := s.Colors.ColorFor(n.Type)
	border := typecolor.Dim(color, dimFactor)
	if selected {
		border = selectedBorderColor
	}

	// Collapsed nodes show only their title bar.
	if n.Collapsed() {
		c.DrawBox(x, y, w, 3, border, selected)
		c.DrawText(x+2, y+1, clip(n.DisplayTitle(), w-4), color)
		return
	}

	c.DrawBox(x, y, w, h, border, selected)
	c.DrawText(x+2, y+1, clip(n.DisplayTitle(), w-4), color)
	if h > 2 {
		c.DrawHDivider(x, y+2, w, border)
	}

	bodyTop := y + 3
	s.drawSlots(c, n, x, bodyTop, w)

	layout := s.Layouts.For(n, w)
	if layout.Empty() {
		return
	}
	panelTop := bodyTop + layout.StartOffset
	s.drawPanel(c, layout, x+overlay.HPadding, panelTop, y+h-1, suppressText)
}

func (s *Scene) drawSlots(c *Canvas, n *workflow.Node, x, top, w int) {
	for i, in := range n.Inputs {
		col := s.Colors.ColorFor(in.Type)
		c.Set(x+1, top+i, '●', col)
		c.DrawText(x+3, top+i, clip(in.Name, w/2-3), labelColor)
	}
	for i, out := range n.Outputs {
		col := s.Colors.ColorFor(out.Type)
		name := clip(out.Name, w/2-3)
		c.DrawText(x+w-2-len([]rune(name))-1, top+i, name, labelColor)
		c.Set(x+w-2, top+i, '●', col)
	}
}

func (s *Scene) drawPanel(c *Canvas, layout overlay.Layout, x, top, bottom int, suppressText bool) {
	for _, box := range layout.Boxes {
		rowY := top + box.OffsetY
		if rowY >= bottom {
			return
		}
		if suppressText {
			// Overlay owns the text; keep the label row blank so the
			// selectable copy is the only one on screen.
			continue
		}
		if box.Lines == nil {
			line := box.Item.Label + ": "
			c.DrawText(x, rowY, clip(line+box.Item.Display, layout.Width), labelColor)
			c.DrawText(x+len([]rune(line)), rowY, clip(box.Item.Display, layout.Width-len([]rune(line))), valueColor)
			continue
		}
		c.DrawText(x, rowY, clip(box.Item.Label+":", layout.Width), labelColor)
		for i, ln := range box.Lines {
			if rowY+1+i >= bottom {
				break
			}
			c.DrawText(x, rowY+1+i, clip(ln, layout.Width), valueColor)
		}
	}
}

// drawLinks routes each link as a simple elbow between node edges, colored
// by the link's slot type, dimmed so links read behind nodes.
func (s *Scene) drawLinks(c *Canvas, doc *workflow.Document, cam view.Camera) {
	for _, l := range doc.Links {
		from := doc.NodeByID(l.OriginID)
		to := doc.NodeByID(l.TargetID)
		if from == nil || to == nil {
			continue
		}
		fx, fy, fw, fh := nodeCellRect(from, cam)
		tx, ty, _, th := nodeCellRect(to, cam)

		color := typecolor.Dim(s.Colors.ColorFor(l.Type), dimFactor)
		x1, y1 := fx+fw-1, fy+fh/2
		x2, y2 := tx, ty+th/2
		s.drawElbow(c, x1, y1, x2, y2, color)
	}
}

func (s *Scene) drawElbow(c *Canvas, x1, y1, x2, y2 int, color string) {
	midX := (x1 + x2) / 2
	for x := minInt(x1+1, midX); x <= maxInt(x1+1, midX); x++ {
		c.Set(x, y1, '─', color)
	}
	for y := minInt(y1, y2) + 1; y < maxInt(y1, y2); y++ {
		c.Set(midX, y, '│', color)
	}
	for x := minInt(midX, x2-1); x <= maxInt(midX, x2-1); x++ {
		c.Set(x, y2, '─', color)
	}
	if y1 != y2 {
		if y2 > y1 {
			c.Set(midX, y1, '╮', color)
			c.Set(midX, y2, '╰', color)
		} else {
			c.Set(midX, y1, '╯', color)
			c.Set(midX, y2, '╭', color)
		}
	}
	c.Set(x2, y2, '▶', color)
}

func clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
