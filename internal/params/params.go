// Package params turns a node's raw property and widget data into an
// ordered list of displayable parameter items, with separate formatting for
// on-screen display (truncated) and clipboard copy (full fidelity).
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zjrosen/flowlens/internal/workflow"
)

// Kind classifies how an item renders.
type Kind int

const (
	// Inline items render as a single label/value line.
	Inline Kind = iota
	// Multiline items render as a label above wrapped free text.
	Multiline
)

// Display truncation budget for inline values, in runes.
const maxInlineRunes = 60

// ellipsis marks a truncated display value.
const ellipsis = "…"

// Item is one displayable parameter.
type Item struct {
	Label string
	Value any
	Kind  Kind
	// Display is the truncated on-screen rendering of Value.
	Display string
	// Copy is the untruncated clipboard rendering of Value.
	Copy string
}

// Build extracts the parameter list for a node: properties first in
// lexicographic key order, then widget values in positional order with
// labels resolved through the table. UI-only controls are dropped. A node
// with no properties and no widget values yields an empty list.
func Build(node *workflow.Node, labels *LabelTable) []Item {
	items := make([]Item, 0, len(node.Properties)+len(node.WidgetValues))

	for _, key := range node.PropertyKeys() {
		items = append(items, makeItem(key, node.Properties[key], labels))
	}
	for i, v := range node.WidgetValues {
		label := labels.Label(node.Type, i)
		if labels.IsHidden(label) {
			continue
		}
		items = append(items, makeItem(label, v, labels))
	}
	return items
}

func makeItem(label string, value any, labels *LabelTable) Item {
	kind := Inline
	if labels.IsFreeText(label) {
		kind = Multiline
	} else if s, ok := value.(string); ok && strings.Contains(s, "\n") {
		kind = Multiline
	}
	return Item{
		Label:   label,
		Value:   value,
		Kind:    kind,
		Display: FormatDisplay(value),
		Copy:    FormatCopy(value),
	}
}

// FormatDisplay renders a value for on-screen use: non-integer numbers are
// rounded to 4 decimal places with trailing zeros trimmed, and long values
// are truncated with an ellipsis.
func FormatDisplay(value any) string {
	return truncate(formatValue(value, true))
}

// FormatCopy renders a value for the clipboard at full fidelity.
func FormatCopy(value any) string {
	return formatValue(value, false)
}

func formatValue(value any, display bool) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v, display)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return formatNumber(f, display)
		}
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// formatNumber renders integers without a fractional part. For display,
// non-integer values are fixed to 4 decimals and then stripped of trailing
// zeros; for copy they keep their shortest exact representation.
func formatNumber(f float64, display bool) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if !display {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxInlineRunes {
		return s
	}
	return string(runes[:maxInlineRunes]) + ellipsis
}
