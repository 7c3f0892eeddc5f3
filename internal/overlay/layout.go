// Package overlay computes the geometry of a node's parameter panel: where
// it starts below the node's connector slots, how wide it is, and where each
// parameter box sits. The same layout drives both the plain canvas rendering
// and the selectable text overlay, so the two always coincide.
package overlay

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/flowlens/internal/params"
	"github.com/zjrosen/flowlens/internal/workflow"
)

// Panel geometry constants, in cells.
const (
	// HPadding is the horizontal inset on each side of the panel.
	HPadding = 2
	// boxGap separates stacked parameter boxes.
	boxGap = 1
	// inlineHeight is the height of a single label/value box.
	inlineHeight = 1
	// previewLines caps how many wrapped lines a multiline box shows.
	previewLines = 4
)

// Box is the placed geometry of one parameter.
type Box struct {
	Item params.Item
	// Lines holds the wrapped value text for multiline boxes; inline
	// boxes leave it nil and render Item.Display beside the label.
	Lines   []string
	OffsetY int
	Height  int
}

// Layout is the computed panel geometry for one node.
type Layout struct {
	// StartOffset is the vertical distance from the top of the node body
	// to the panel, clearing the connector slot rows.
	StartOffset int
	Width       int
	Boxes       []Box
	// TotalHeight is the stacked height of all boxes and gaps.
	TotalHeight int
}

// Empty reports whether the node has nothing to show, in which case no
// panel is drawn at all.
func (l Layout) Empty() bool { return len(l.Boxes) == 0 }

// Compute lays out the given items for a node rendered at the given width
// in cells. Items stack top to bottom with a fixed gap; multiline values
// word-wrap to the panel width, breaking over-long tokens at the character
// level.
func Compute(node *workflow.Node, items []params.Item, width int) Layout {
	panelWidth := width - 2*HPadding
	if panelWidth < 1 {
		panelWidth = 1
	}

	slots := len(node.Inputs)
	if len(node.Outputs) > slots {
		slots = len(node.Outputs)
	}

	l := Layout{
		StartOffset: slots + 1,
		Width:       panelWidth,
	}
	if len(items) == 0 {
		return l
	}

	y := 0
	for _, it := range items {
		box := Box{Item: it, OffsetY: y, Height: inlineHeight}
		if it.Kind == params.Multiline {
			box.Lines = wrapValue(it.Copy, panelWidth)
			// One row for the label above the wrapped text.
			box.Height = 1 + len(box.Lines)
		}
		l.Boxes = append(l.Boxes, box)
		y += box.Height + boxGap
	}
	l.TotalHeight = y - boxGap
	return l
}

// wrapValue wraps text to the width, preferring whitespace breaks and
// falling back to hard character breaks for unbroken tokens, then caps the
// result at the preview line count.
func wrapValue(text string, width int) []string {
	wrapped := wrap.String(wordwrap.String(text, width), width)
	lines := strings.Split(wrapped, "\n")
	if len(lines) > previewLines {
		lines = lines[:previewLines]
		last := lines[previewLines-1]
		if r := []rune(last); len(r) >= width {
			last = string(r[:width-1])
		}
		lines[previewLines-1] = last + "…"
	}
	return lines
}

// Engine computes layouts with a short-lived cache, since the same node is
// laid out on every frame while visible. Entries are keyed by node id,
// width, and parameter fingerprint, so stale geometry cannot survive a node
// resize or a document reload.
type Engine struct {
	labels *params.LabelTable
	cache  *gocache.Cache
}

// NewEngine returns an engine resolving widget labels through the table.
func NewEngine(labels *params.LabelTable) *Engine {
	return &Engine{
		labels: labels,
		cache:  gocache.New(time.Minute, 5*time.Minute),
	}
}

// For returns the layout for a node at the given rendered width, building
// the parameter list on a cache miss.
func (e *Engine) For(node *workflow.Node, width int) Layout {
	key := fmt.Sprintf("%d:%d:%d:%d", node.ID, width, len(node.WidgetValues), len(node.Properties))
	if v, ok := e.cache.Get(key); ok {
		return v.(Layout)
	}
	l := Compute(node, params.Build(node, e.labels), width)
	e.cache.Set(key, l, gocache.DefaultExpiration)
	return l
}

// Invalidate drops every cached layout, for use after a document reload.
func (e *Engine) Invalidate() {
	e.cache.Flush()
}
