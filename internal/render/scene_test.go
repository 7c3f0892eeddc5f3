package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/flowlens/internal/overlay"
	"github.com/zjrosen/flowlens/internal/params"
	"github.com/zjrosen/flowlens/internal/typecolor"
	"github.com/zjrosen/flowlens/internal/view"
	"github.com/zjrosen/flowlens/internal/workflow"
)

func newScene() *Scene {
	return NewScene(typecolor.NewRegistry(), overlay.NewEngine(params.DefaultLabelTable()))
}

func sampleDoc() *workflow.Document {
	return &workflow.Document{
		Nodes: []*workflow.Node{
			{
				ID: 1, Type: "KSampler", Title: "Sampler",
				X: 40, Y: 80, Width: 320, Height: 480,
				Inputs:       []workflow.Slot{{Name: "model", Type: "MODEL"}, {Name: "latent", Type: "LATENT"}},
				Outputs:      []workflow.Slot{{Name: "LATENT", Type: "LATENT"}},
				WidgetValues: []any{42.0, "fixed", 20.0, 7.5},
			},
			{
				ID: 2, Type: "VAEDecode",
				X: 600, Y: 80, Width: 240, Height: 320,
				Inputs: []workflow.Slot{{Name: "samples", Type: "LATENT"}},
			},
		},
		Links: []workflow.Link{{ID: 9, OriginID: 1, OriginSlot: 0, TargetID: 2, TargetSlot: 0, Type: "LATENT"}},
	}
}

func plainFrame(t *testing.T, s *Scene, doc *workflow.Document, cam view.Camera, selected int64) string {
	t.Helper()
	return ansi.Strip(s.Render(doc, cam, selected, 120, 40, false).String())
}

func TestRenderShowsTitlesAndParams(t *testing.T) {
	s := newScene()
	frame := plainFrame(t, s, sampleDoc(), view.NewCamera(), 0)

	assert.Contains(t, frame, "Sampler", "node title should be drawn")
	assert.Contains(t, frame, "VAEDecode", "untitled node falls back to its type")
	assert.Contains(t, frame, "seed: 42", "widget parameters should be labeled")
	assert.Contains(t, frame, "cfg: 7.5", "float parameters display trimmed")
	assert.Contains(t, frame, "model", "input slot names should be drawn")
}

func TestRenderEmptyDocument(t *testing.T) {
	s := newScene()
	frame := plainFrame(t, s, &workflow.Document{}, view.NewCamera(), 0)

	assert.Equal(t, "", strings.TrimSpace(frame), "an empty document renders a blank canvas")
}

func TestRenderNilDocument(t *testing.T) {
	s := newScene()
	c := s.Render(nil, view.NewCamera(), 0, 20, 5, false)
	assert.Equal(t, 20, c.Width(), "nil document still yields a canvas")
}

func TestRenderSuppressesTextUnderOverlay(t *testing.T) {
	s := newScene()
	doc := sampleDoc()

	with := ansi.Strip(s.Render(doc, view.NewCamera(), 1, 120, 40, false).String())
	suppressed := ansi.Strip(s.Render(doc, view.NewCamera(), 1, 120, 40, true).String())

	assert.Contains(t, with, "seed: 42", "canvas draws parameter text when no overlay is shown")
	assert.NotContains(t, suppressed, "seed: 42", "canvas text is suppressed while the overlay shows it")
	assert.Contains(t, suppressed, "Sampler", "the node frame itself still renders")
}

func TestRenderCollapsedNodeShowsTitleOnly(t *testing.T) {
	s := newScene()
	doc := sampleDoc()
	doc.Nodes[0].Flags = map[string]any{"collapsed": true}

	frame := plainFrame(t, s, doc, view.NewCamera(), 0)

	assert.Contains(t, frame, "Sampler", "a collapsed node keeps its title")
	assert.NotContains(t, frame, "seed: 42", "a collapsed node hides its parameters")
	assert.NotContains(t, frame, "model", "a collapsed node hides its slots")
}

func TestNodeAtCellRoundTrip(t *testing.T) {
	s := newScene()
	doc := sampleDoc()
	cam := view.NewCamera()

	n := doc.Nodes[0]
	x, y, w, h := nodeCellRect(n, cam)
	hit := s.NodeAtCell(doc, cam, x+w/2, y+h/2)
	require.NotNil(t, hit, "the node's center cell should hit it")
	assert.Equal(t, n.ID, hit.ID, "hit testing resolves the right node")

	assert.Nil(t, s.NodeAtCell(doc, cam, 119, 39), "far corner should hit nothing")
}

func TestInTitleBarCell(t *testing.T) {
	s := newScene()
	doc := sampleDoc()
	cam := view.NewCamera()

	n := doc.Nodes[0]
	x, y, _, h := nodeCellRect(n, cam)
	assert.True(t, s.InTitleBarCell(n, cam, x+2, y+1), "the row under the top border is title bar")
	assert.False(t, s.InTitleBarCell(n, cam, x+2, y+h-2), "the body is not title bar")
}

func TestCellToWorldTracksCamera(t *testing.T) {
	cam := view.Camera{OffsetX: 0, OffsetY: 0, Scale: 1}
	wx, wy := CellToWorld(cam, 0, 0)
	assert.InDelta(t, CellWidth/2, wx, 1e-9, "cell zero maps to its center")
	assert.InDelta(t, CellHeight/2, wy, 1e-9, "cell zero maps to its center")

	panned := cam.Pan(-CellWidth, 0)
	wx2, _ := CellToWorld(panned, 0, 0)
	assert.InDelta(t, wx+CellWidth, wx2, 1e-9, "panning left reveals world farther right")
}

func TestCanvasClipping(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawText(-2, 1, "hello", "")
	c.DrawText(8, 0, "world", "")
	c.Set(100, 100, 'x', "")
	c.DrawBox(-2, -2, 30, 30, "", false)

	out := ansi.Strip(c.String())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3, "canvas height is fixed")
	for _, line := range lines {
		assert.LessOrEqual(t, len([]rune(line)), 10, "no line exceeds the canvas width")
	}
	assert.Contains(t, lines[0], "wo", "in-bounds prefix of clipped text is drawn")
	assert.Contains(t, lines[1], "llo", "in-bounds suffix of clipped text is drawn")
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawText(0, 0, "ab", "#ff0000")
	c.DrawText(2, 0, "cd", "")

	out := ansi.Strip(c.String())
	assert.Equal(t, "abcd \n     ", out, "cells render in place with padding spaces")
}
