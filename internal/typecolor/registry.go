// Package typecolor assigns stable colors to slot and node type names.
//
// Well-known types come from a fixed palette; everything else gets a color
// derived from a hash of its canonical name, so the same type maps to the
// same color across sessions, machines, and documents without persisted
// state.
package typecolor

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// Saturation and lightness are fixed for derived colors; only hue varies per
// type. These values keep generated colors readable on the dark canvas.
const (
	saturation = 0.62
	lightness  = 0.55
)

// builtins covers the common pipeline types. Keys are canonical (uppercase).
var builtins = map[string]string{
	"MODEL":        "#b39ddb",
	"CLIP":         "#ffd500",
	"VAE":          "#ff6e6e",
	"CONDITIONING": "#ffa931",
	"LATENT":       "#ff9cf9",
	"IMAGE":        "#64b5f6",
	"MASK":         "#81c784",
	"CONTROL_NET":  "#6ee7b7",
	"STYLE_MODEL":  "#c2ffae",
	"CLIP_VISION":  "#a8dadc",
	"SAMPLER":      "#ecb4b4",
	"SIGMAS":       "#cdffcd",
	"GUIDER":       "#66ffff",
	"NOISE":        "#b0b0b0",
	"STRING":       "#77ff77",
	"INT":          "#29699c",
	"FLOAT":        "#9955ff",
	"BOOLEAN":      "#7f5ad9",
}

// Registry maps type names to hex colors. Assignments are made on first
// lookup and never change for the lifetime of the registry. Lookups are
// case-insensitive; the registry records every distinct raw spelling seen
// for each type.
type Registry struct {
	mu        sync.Mutex
	overrides map[string]string
	assigned  map[string]string
	variants  map[string]map[string]struct{}
}

// NewRegistry returns a registry holding only the built-in palette.
func NewRegistry() *Registry {
	return &Registry{
		overrides: make(map[string]string),
		assigned:  make(map[string]string),
		variants:  make(map[string]map[string]struct{}),
	}
}

// Override pins a type name to a color, taking precedence over the built-in
// palette and any derived assignment. Used for user theme configuration.
func (r *Registry) Override(typeName, hex string) {
	folded := strings.ToUpper(Canonicalize(typeName))
	r.mu.Lock()
	r.overrides[folded] = hex
	r.mu.Unlock()
}

// ColorFor returns the hex color (e.g. "#3fa65b") for the given type name.
// Configured overrides win, then built-in palette entries, matched exactly
// then case-insensitively; otherwise the first lookup assigns a derived
// color that every later lookup, under any casing, returns unchanged.
func (r *Registry) ColorFor(typeName string) string {
	canon := Canonicalize(typeName)
	folded := strings.ToUpper(canon)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.variants[folded] == nil {
		r.variants[folded] = make(map[string]struct{})
	}
	r.variants[folded][typeName] = struct{}{}

	if c, ok := r.overrides[folded]; ok {
		return c
	}
	if c, ok := builtins[canon]; ok {
		return c
	}
	if c, ok := builtins[folded]; ok {
		return c
	}
	if c, ok := r.assigned[folded]; ok {
		return c
	}
	c := deriveColor(canon)
	r.assigned[folded] = c
	return c
}

// Variants returns the raw spellings recorded for a type name, in no
// particular order. Useful for diagnostics when documents mix case styles
// for the same logical type.
func (r *Registry) Variants(typeName string) []string {
	folded := strings.ToUpper(Canonicalize(typeName))

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.variants[folded]))
	for v := range r.variants[folded] {
		out = append(out, v)
	}
	return out
}

// ScanDocument assigns colors for every slot type in types ahead of first
// render, so link and connector coloring never observes a type before the
// registry does.
func (r *Registry) ScanDocument(types []string) {
	for _, t := range types {
		if t != "" {
			r.ColorFor(t)
		}
	}
}

// Canonicalize maps a plain identifier (letters, digits, underscores) to its
// uppercase form. Names containing any other character, such as namespaced
// or punctuated types, are preserved exactly.
func Canonicalize(name string) string {
	if name == "" {
		return name
	}
	for _, c := range name {
		plain := c == '_' ||
			(c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z')
		if !plain {
			return name
		}
	}
	return strings.ToUpper(name)
}

// deriveColor hashes the canonical name with FNV-1a and spreads the result
// across the hue circle.
func deriveColor(canon string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(canon))
	hue := float64(h.Sum32() % 360)
	rr, gg, bb := hslToRGB(hue, saturation, lightness)
	return fmt.Sprintf("#%02x%02x%02x", rr, gg, bb)
}

// hslToRGB converts hue in degrees [0,360) with saturation/lightness in
// [0,1] to 8-bit RGB channels.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	return channel(r + m), channel(g + m), channel(b + m)
}

func channel(v float64) uint8 {
	n := math.Round(v * 255)
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return uint8(n)
}

// Dim scales each RGB channel of a "#rrggbb" color by a factor in [0,1],
// clamping channels to [0,255]. Invalid input is returned unchanged.
func Dim(hex string, factor float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	scale := func(c uint8) uint8 {
		return channel(float64(c) * factor / 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}
