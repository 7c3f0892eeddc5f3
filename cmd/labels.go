package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the widget label catalog",
	Long: `Display the per-node-type widget labels used when extracting parameters,
including built-in entries and any configured overrides.`,
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	table := cfg.Labels.LabelTable()

	fmt.Printf("Catalog version: %s\n\n", table.Version)

	fmt.Println("Widget labels:")
	types := make([]string, 0, len(table.Widgets))
	for t := range table.Widgets {
		types = append(types, t)
	}
	sort.Strings(types)
	maxLen := maxTypeLen(types)
	for _, t := range types {
		labels := table.Widgets[t]
		if len(labels) == 0 {
			fmt.Printf("  %-*s  (no widgets)\n", maxLen, t)
			continue
		}
		fmt.Printf("  %-*s  %v\n", maxLen, t, labels)
		if _, overridden := cfg.Labels.Widgets[t]; overridden {
			fmt.Printf("  %-*s  (from config)\n", maxLen, "")
		}
	}

	fmt.Println()
	fmt.Println("Free-text labels (render as wrapped multiline):")
	for _, l := range sortedKeys(table.FreeText) {
		fmt.Printf("  %s\n", l)
	}

	fmt.Println()
	fmt.Println("Hidden labels (UI-only controls, never shown):")
	for _, l := range sortedKeys(table.Hidden) {
		fmt.Printf("  %s\n", l)
	}

	fmt.Println()
	fmt.Println("Extend the catalog under 'labels:' in the config file")
	return nil
}

// maxTypeLen returns the length of the longest type name in the slice.
func maxTypeLen(types []string) int {
	maxLen := 0
	for _, t := range types {
		if len(t) > maxLen {
			maxLen = len(t)
		}
	}
	return maxLen
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
