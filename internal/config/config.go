// Package config provides configuration types and defaults for flowlens.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/flowlens/internal/params"
)

// Config holds all configuration options for flowlens.
type Config struct {
	AutoReload bool         `mapstructure:"auto_reload"`
	Log        LogConfig    `mapstructure:"log"`
	UI         UIConfig     `mapstructure:"ui"`
	Theme      ThemeConfig  `mapstructure:"theme"`
	Labels     LabelsConfig `mapstructure:"labels"`
}

// ThemeConfig holds user color overrides.
type ThemeConfig struct {
	// Types maps a slot type name to a "#rrggbb" color, overriding both the
	// built-in palette and derived colors.
	Types map[string]string `mapstructure:"types"`
}

// LogConfig controls the debug log file. The TUI owns the terminal, so
// logging always goes to a file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowSidebar   bool `mapstructure:"show_sidebar"`
	ShowStatusBar bool `mapstructure:"show_status_bar"`
}

// LabelsConfig carries the widget label catalog. Node-type catalogs evolve
// outside this tool, so users can extend or override the built-in table.
type LabelsConfig struct {
	// Version tags the catalog revision the overrides were written for.
	Version string `mapstructure:"version"`
	// Widgets maps a node type to the ordered labels of its widget values.
	Widgets map[string][]string `mapstructure:"widgets"`
	// FreeText lists labels whose values render as wrapped multiline text.
	FreeText []string `mapstructure:"free_text"`
	// Hidden lists labels that are UI-only controls, not parameters.
	Hidden []string `mapstructure:"hidden"`
}

// LabelTable merges the built-in catalog with the configured overrides;
// configured entries win per node type.
func (l LabelsConfig) LabelTable() *params.LabelTable {
	table := params.DefaultLabelTable()
	if l.Version != "" {
		table.Version = l.Version
	}
	for nodeType, labels := range l.Widgets {
		table.Widgets[nodeType] = labels
	}
	for _, label := range l.FreeText {
		table.FreeText[label] = true
	}
	for _, label := range l.Hidden {
		table.Hidden[label] = true
	}
	return table
}

// ValidateLogLevel checks the configured log level.
// Returns nil for an empty level (will use the default).
func ValidateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log level %q is not one of debug, info, warn, error", level)
}

// Validate checks the whole configuration for errors.
func (c Config) Validate() error {
	if err := ValidateLogLevel(c.Log.Level); err != nil {
		return err
	}
	for nodeType, labels := range c.Labels.Widgets {
		for i, label := range labels {
			if label == "" {
				return fmt.Errorf("labels.widgets.%s: label %d is empty", nodeType, i)
			}
		}
	}
	for typeName, hex := range c.Theme.Types {
		if !validHexColor(hex) {
			return fmt.Errorf("theme.types.%s: %q is not a #rrggbb color", typeName, hex)
		}
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		hexDigit := (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'f') ||
			(c >= 'A' && c <= 'F')
		if !hexDigit {
			return false
		}
	}
	return true
}

// DefaultLogPath returns the log file location under the user cache
// directory, falling back to the temp directory.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "flowlens", "flowlens.log")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoReload: true,
		Log: LogConfig{
			Path:  DefaultLogPath(),
			Level: "info",
		},
		UI: UIConfig{
			ShowSidebar:   true,
			ShowStatusBar: true,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Flowlens Configuration

# Reload open tabs when their files change on disk
auto_reload: true

# Debug log (the terminal is owned by the UI, so logs go to a file)
log:
  # path: ~/.cache/flowlens/flowlens.log
  level: info   # debug, info, warn, error

# UI settings
ui:
  show_sidebar: true     # Show the parameter sidebar for the selected node
  show_status_bar: true  # Show status bar at bottom

# Color overrides per slot type (#rrggbb), replacing the built-in palette
theme:
  # types:
  #   LATENT: "#ff00ff"

# Widget label catalog
# Workflow files store widget values positionally; labels come from a
# per-node-type table. The built-in table covers common node types, and
# entries here extend or replace it.
labels:
  # version: "2026-08"
  # widgets:
  #   MyCustomSampler: [seed, steps, cfg]
  # free_text:
  #   - prompt
  # hidden:
  #   - upload
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
