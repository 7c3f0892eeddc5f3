package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWithTitleBorder(t *testing.T) {
	out := ansi.Strip(RenderWithTitleBorder("hello", "Params", 20, 5, false))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5, "height is honored")

	assert.Contains(t, lines[0], "Params", "title embeds in the top border")
	assert.True(t, strings.HasPrefix(lines[0], "╭"), "rounded top left corner")
	assert.True(t, strings.HasSuffix(lines[0], "╮"), "rounded top right corner")
	assert.Contains(t, lines[1], "hello", "content renders inside")
	assert.True(t, strings.HasPrefix(lines[4], "╰"), "rounded bottom left corner")

	for _, line := range lines {
		assert.Equal(t, 20, ansi.StringWidth(line), "every row is the requested width")
	}
}

func TestRenderWithTitleBorderEmptyTitle(t *testing.T) {
	out := ansi.Strip(RenderWithTitleBorder("x", "", 10, 3, true))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3, "height is honored")
	assert.Equal(t, "╭────────╮", lines[0], "empty title renders a plain border")
}

func TestRenderWithTitleBorderLongTitle(t *testing.T) {
	out := ansi.Strip(RenderWithTitleBorder("x", "a very long panel title", 14, 3, false))
	lines := strings.Split(out, "\n")
	assert.Equal(t, 14, ansi.StringWidth(lines[0]), "long titles truncate to the width")
	assert.Contains(t, lines[0], "...", "truncation is marked")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"truncated", "abcdefgh", 6, "abc..."},
		{"tiny", "abcdefgh", 2, ".."},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateString(tt.in, tt.width), "truncation should match")
		})
	}
}
