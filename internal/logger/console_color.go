package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/tidydir/internal/tree"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning/threshold metrics
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Label is colored cyan, value is colored based on the metric type and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// formatColorizedScanMetrics formats scan statistics with color coding.
// Format: "files: N, folders: N, ignored: N, size: X"
// The file count is colored green, identifiers are cyan.
// Ignored folders are colored yellow and only shown when present.
// Colors are automatically disabled when output is not a TTY via fatih/color's built-in detection.
func formatColorizedScanMetrics(stats tree.Stats) string {
	scheme := newColorScheme()
	var parts []string

	// File count (success - green)
	labelColored := scheme.success.Sprint("files")
	valueColored := scheme.value.Sprintf("%d", stats.Files)
	parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))

	// Folder count (cyan label)
	parts = append(parts, formatColorizedMetric("folders", stats.Folders, scheme))

	// Ignored folders (warning - yellow), skipped when zero
	if stats.IgnoredFolders > 0 {
		labelColored := scheme.warn.Sprint("ignored")
		valueColored := scheme.warn.Sprintf("%d", stats.IgnoredFolders)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	}

	// Total size (cyan label)
	parts = append(parts, formatColorizedMetric("size", formatBytes(stats.TotalBytes), scheme))

	return strings.Join(parts, ", ")
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
