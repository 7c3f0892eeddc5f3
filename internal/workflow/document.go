// Package workflow defines the graph document model: nodes, slots, and
// links as produced by image-generation pipeline tools, normalized once at
// load time so the rest of the viewer never re-checks field shapes.
package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TitleBarHeight is the height in world units of the draggable band at the
// top of every node.
const TitleBarHeight = 30

// ReservedPropertyKey is tool bookkeeping, not a user parameter, and is
// excluded from parameter extraction.
const ReservedPropertyKey = "Node name for S&R"

// Slot describes one input or output connector on a node.
type Slot struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Link *int64 `json:"link,omitempty"`
}

// Node is one graph node. Position and size are normalized to plain numeric
// pairs at decode time regardless of how the source document encodes them.
type Node struct {
	ID           int64
	Type         string
	Title        string
	X, Y         float64
	Width        float64
	Height       float64
	Properties   map[string]any
	WidgetValues []any
	Inputs       []Slot
	Outputs      []Slot
	Flags        map[string]any
	// Raw is the node's source JSON, kept for the detail view.
	Raw json.RawMessage
}

// Collapsed reports whether the node is flagged collapsed, in which case
// only its title bar renders.
func (n *Node) Collapsed() bool {
	v, ok := n.Flags["collapsed"].(bool)
	return ok && v
}

// DisplayTitle returns the node's title, falling back to its type name.
func (n *Node) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return n.Type
}

// Contains reports whether the world-space point lies inside the node's
// bounds, title bar included.
func (n *Node) Contains(x, y float64) bool {
	return x >= n.X && x < n.X+n.Width &&
		y >= n.Y-TitleBarHeight && y < n.Y+n.Height
}

// InTitleBar reports whether the world-space point lies inside the node's
// title-bar band.
func (n *Node) InTitleBar(x, y float64) bool {
	return x >= n.X && x < n.X+n.Width &&
		y >= n.Y-TitleBarHeight && y < n.Y
}

// PropertyKeys returns the node's property keys in lexicographic order,
// with the reserved bookkeeping key excluded.
func (n *Node) PropertyKeys() []string {
	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		if k == ReservedPropertyKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Link is one edge between an output slot and an input slot.
type Link struct {
	ID         int64
	OriginID   int64
	OriginSlot int
	TargetID   int64
	TargetSlot int
	Type       string
}

// Document is a loaded workflow graph. Extra keeps the source document's
// top-level fields beyond nodes and links (version, groups, tool state), so
// nothing the file carries is silently lost.
type Document struct {
	Nodes []*Node
	Links []Link
	Extra map[string]any
}

// NodeByID returns the node with the given id, or nil.
func (d *Document) NodeByID(id int64) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeAt returns the topmost node containing the world-space point, or nil.
// Later nodes in document order draw on top, so the scan runs back to front.
func (d *Document) NodeAt(x, y float64) *Node {
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		if d.Nodes[i].Contains(x, y) {
			return d.Nodes[i]
		}
	}
	return nil
}

// SlotTypes returns every distinct slot type name appearing in the
// document, for pre-seeding the color registry before first render.
func (d *Document) SlotTypes() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, n := range d.Nodes {
		for _, s := range n.Inputs {
			add(s.Type)
		}
		for _, s := range n.Outputs {
			add(s.Type)
		}
	}
	for _, l := range d.Links {
		add(l.Type)
	}
	return out
}

// Bounds returns the world-space bounding box of all nodes (title bars
// included). ok is false when the document has no nodes.
func (d *Document) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if len(d.Nodes) == 0 {
		return 0, 0, 0, 0, false
	}
	first := d.Nodes[0]
	minX, minY = first.X, first.Y-TitleBarHeight
	maxX, maxY = first.X+first.Width, first.Y+first.Height
	for _, n := range d.Nodes[1:] {
		minX = min(minX, n.X)
		minY = min(minY, n.Y-TitleBarHeight)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	return minX, minY, maxX, maxY, true
}

// rawNode mirrors the wire shape; pos and size tolerate both array and
// keyed-object encodings.
type rawNode struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Pos          json.RawMessage `json:"pos"`
	Size         json.RawMessage `json:"size"`
	Properties   map[string]any  `json:"properties"`
	WidgetValues []any           `json:"widgets_values"`
	Inputs       []Slot          `json:"inputs"`
	Outputs      []Slot          `json:"outputs"`
	Flags        map[string]any  `json:"flags"`
}

type rawDocument struct {
	Nodes []json.RawMessage `json:"nodes"`
	Links []json.RawMessage `json:"links"`
}

// Decode parses a workflow document from JSON, applying the defensive
// normalization the rest of the viewer relies on: missing node and link
// lists become empty, size and position objects keyed "0"/"1" are coerced
// to numeric pairs, and malformed links are skipped rather than failing
// the load.
func Decode(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing workflow JSON: %w", err)
	}

	doc := &Document{
		Nodes: make([]*Node, 0, len(raw.Nodes)),
		Links: make([]Link, 0, len(raw.Links)),
		Extra: decodeExtra(data),
	}
	for _, src := range raw.Nodes {
		var rn rawNode
		if err := json.Unmarshal(src, &rn); err != nil {
			continue
		}
		x, y := decodePair(rn.Pos, 0, 0)
		w, h := decodePair(rn.Size, 140, 80)
		doc.Nodes = append(doc.Nodes, &Node{
			ID:           rn.ID,
			Type:         rn.Type,
			Title:        rn.Title,
			X:            x,
			Y:            y,
			Width:        w,
			Height:       h,
			Properties:   rn.Properties,
			WidgetValues: rn.WidgetValues,
			Inputs:       rn.Inputs,
			Outputs:      rn.Outputs,
			Flags:        rn.Flags,
			Raw:          src,
		})
	}
	for _, rl := range raw.Links {
		if l, ok := decodeLink(rl); ok {
			doc.Links = append(doc.Links, l)
		}
	}
	return doc, nil
}

// decodeExtra keeps the top-level fields the model does not interpret.
func decodeExtra(data []byte) map[string]any {
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil
	}
	delete(all, "nodes")
	delete(all, "links")
	if len(all) == 0 {
		return nil
	}
	return all
}

// decodePair reads a two-component numeric value encoded either as an
// array [x, y] or as an object {"0": x, "1": y}. Anything else yields the
// provided defaults.
func decodePair(raw json.RawMessage, defA, defB float64) (float64, float64) {
	if len(raw) == 0 {
		return defA, defB
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) >= 2 {
		return arr[0], arr[1]
	}
	var obj map[string]float64
	if err := json.Unmarshal(raw, &obj); err == nil {
		a, okA := obj["0"]
		b, okB := obj["1"]
		if okA && okB {
			return a, b
		}
	}
	return defA, defB
}

// decodeLink reads a link encoded either as the positional array
// [id, origin, originSlot, target, targetSlot, type] or as an object with
// named fields.
func decodeLink(raw json.RawMessage) (Link, bool) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 5 {
			return Link{}, false
		}
		l := Link{
			ID:         asInt64(arr[0]),
			OriginID:   asInt64(arr[1]),
			OriginSlot: int(asInt64(arr[2])),
			TargetID:   asInt64(arr[3]),
			TargetSlot: int(asInt64(arr[4])),
		}
		if len(arr) > 5 {
			if s, ok := arr[5].(string); ok {
				l.Type = s
			}
		}
		return l, true
	}

	var obj struct {
		ID         int64  `json:"id"`
		OriginID   int64  `json:"origin_id"`
		OriginSlot int    `json:"origin_slot"`
		TargetID   int64  `json:"target_id"`
		TargetSlot int    `json:"target_slot"`
		Type       string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Link{}, false
	}
	return Link{
		ID:         obj.ID,
		OriginID:   obj.OriginID,
		OriginSlot: obj.OriginSlot,
		TargetID:   obj.TargetID,
		TargetSlot: obj.TargetSlot,
		Type:       obj.Type,
	}, true
}

func asInt64(v any) int64 {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return 0
}
