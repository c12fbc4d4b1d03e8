package logger

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/harrison/tidydir/internal/tree"
)

func TestNewColorScheme(t *testing.T) {
	scheme := newColorScheme()

	if scheme == nil {
		t.Fatal("Expected non-nil color scheme")
	}
	if scheme.success == nil {
		t.Error("Expected success color to be set")
	}
	if scheme.fail == nil {
		t.Error("Expected fail color to be set")
	}
	if scheme.warn == nil {
		t.Error("Expected warn color to be set")
	}
	if scheme.label == nil {
		t.Error("Expected label color to be set")
	}
	if scheme.value == nil {
		t.Error("Expected value color to be set")
	}
}

func TestFormatColorizedMetric(t *testing.T) {
	scheme := newColorScheme()

	result := formatColorizedMetric("folders", 7, scheme)

	if !strings.Contains(result, "folders") {
		t.Errorf("Expected label in result, got %q", result)
	}
	if !strings.Contains(result, "7") {
		t.Errorf("Expected value in result, got %q", result)
	}
	if !strings.Contains(result, ": ") {
		t.Errorf("Expected label/value separator, got %q", result)
	}
}

func TestFormatColorizedScanMetrics(t *testing.T) {
	stats := tree.Stats{
		Files:          12,
		Folders:        3,
		IgnoredFolders: 2,
		TotalBytes:     4096,
	}

	result := formatColorizedScanMetrics(stats)

	if !strings.Contains(result, "files") {
		t.Errorf("Expected files metric, got %q", result)
	}
	if !strings.Contains(result, "12") {
		t.Errorf("Expected file count, got %q", result)
	}
	if !strings.Contains(result, "folders") {
		t.Errorf("Expected folders metric, got %q", result)
	}
	if !strings.Contains(result, "ignored") {
		t.Errorf("Expected ignored metric, got %q", result)
	}
	if !strings.Contains(result, "4.0 KB") {
		t.Errorf("Expected size metric, got %q", result)
	}
}

func TestFormatColorizedScanMetricsNoIgnored(t *testing.T) {
	stats := tree.Stats{
		Files:   1,
		Folders: 0,
	}

	result := formatColorizedScanMetrics(stats)

	if strings.Contains(result, "ignored") {
		t.Errorf("Expected no ignored metric when zero, got %q", result)
	}
	// Zero-value metrics for files and folders still render
	if !strings.Contains(result, "files") {
		t.Errorf("Expected files metric, got %q", result)
	}
	if !strings.Contains(result, "folders") {
		t.Errorf("Expected folders metric, got %q", result)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{bytes: 0, want: "0 B"},
		{bytes: 512, want: "512 B"},
		{bytes: 1024, want: "1.0 KB"},
		{bytes: 1536, want: "1.5 KB"},
		{bytes: 1048576, want: "1.0 MB"},
		{bytes: 5242880, want: "5.0 MB"},
		{bytes: 1073741824, want: "1.0 GB"},
	}

	for _, tt := range tests {
		got := formatBytes(tt.bytes)
		if got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestColorSchemeDisabledWhenNoColor(t *testing.T) {
	// Force color off and verify no ANSI escape codes leak into output
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	stats := tree.Stats{Files: 3, Folders: 1, TotalBytes: 100}
	result := formatColorizedScanMetrics(stats)

	if strings.Contains(result, "\033[") {
		t.Errorf("Expected no ANSI codes with NoColor set, got %q", result)
	}
	if result != "files: 3, folders: 1, size: 100 B" {
		t.Errorf("Unexpected plain rendering: %q", result)
	}
}
