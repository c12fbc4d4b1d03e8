// Package logger provides logging implementations for tidydir runs.
//
// The logger package offers structured logging of scan and organize
// progress at the placement and summary levels. Implementations are
// thread-safe and support various output destinations (console, file,
// etc.).
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/tidydir/internal/executor"
	"github.com/harrison/tidydir/internal/tree"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps for tracking the run flow.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum log level for messages to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
// Color output is automatically enabled when writing to os.Stdout or os.Stderr with TTY support.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	// Normalize and validate log level
	normalizedLevel := normalizeLogLevel(logLevel)

	// Detect if we should use color output
	useColor := isTerminal(writer)

	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizedLevel,
		mutex:       sync.Mutex{},
		colorOutput: useColor,
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	// Check if writer is os.Stdout or os.Stderr
	if w == os.Stdout || w == os.Stderr {
		// Use color library's built-in TTY detection
		// This will return false if NO_COLOR env var is set
		return !color.NoColor
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info" // Default level
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	configuredLevel := logLevelToInt(cl.logLevel)
	msgLevel := logLevelToInt(messageLevel)
	return msgLevel >= configuredLevel
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo // Default to info if unknown
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}

	// Check if this level should be logged
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string

	if cl.colorOutput {
		// Format with colors
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		// Plain text format
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogScanStart logs the start of a directory scan at INFO level.
// Format: "[HH:MM:SS] Scanning <root>"
func (cl *ConsoleLogger) LogScanStart(root string) {
	if cl.writer == nil {
		return
	}

	// Scan logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	var message string
	if cl.colorOutput {
		// Bold/bright for the root path
		rootName := color.New(color.Bold).Sprint(root)
		message = fmt.Sprintf("[%s] Scanning %s\n", ts, rootName)
	} else {
		message = fmt.Sprintf("[%s] Scanning %s\n", ts, root)
	}

	cl.writer.Write([]byte(message))
}

// LogScanComplete logs the completion of a directory scan at INFO level.
// Format: "[HH:MM:SS] <root> scanned: <n> files, <n> folders, <size> (<duration>)"
func (cl *ConsoleLogger) LogScanComplete(root string, stats tree.Stats, duration time.Duration) {
	if cl.writer == nil {
		return
	}

	// Scan logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(duration)

	var message string
	if cl.colorOutput {
		// Green for successful completion
		rootName := color.New(color.Bold).Sprint(root)
		scannedText := color.New(color.FgGreen).Sprint("scanned")
		message = fmt.Sprintf("[%s] %s %s: %s (%s)\n", ts, rootName, scannedText, formatColorizedScanMetrics(stats), durationStr)
	} else {
		message = fmt.Sprintf("[%s] %s scanned: %d files, %d folders, %s (%s)\n", ts, root, stats.Files, stats.Folders, formatBytes(stats.TotalBytes), durationStr)
	}

	cl.writer.Write([]byte(message))
}

// LogPlacement logs the outcome of a single file placement at DEBUG level.
// Format: "[HH:MM:SS] <file> (<category>): <status>"
// Returns nil for successful logging, or an error if logging failed.
func (cl *ConsoleLogger) LogPlacement(p executor.Placement) error {
	if cl.writer == nil {
		return nil
	}

	// Placement logging is at DEBUG level
	if !cl.shouldLog("debug") {
		return nil
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	fileInfo := fmt.Sprintf("%s (%s)", filepath.Base(p.Source), p.Category)

	var message string
	if cl.colorOutput {
		// Color code based on status
		var statusText string
		switch p.Status {
		case executor.StatusPlaced:
			statusText = color.New(color.FgGreen).Sprint(p.Status)
		case executor.StatusFailed:
			statusText = color.New(color.FgRed).Sprint(p.Status)
		default:
			statusText = p.Status
		}
		message = fmt.Sprintf("[%s] %s: %s\n", ts, fileInfo, statusText)
	} else {
		message = fmt.Sprintf("[%s] %s: %s\n", ts, fileInfo, p.Status)
	}

	_, err := cl.writer.Write([]byte(message))
	return err
}

// LogOrganizeSummary logs the organize summary with placement statistics at INFO level.
// Format: "[HH:MM:SS] === Organize Summary ===\n[HH:MM:SS] Total files: <n>\n[HH:MM:SS] Placed: <n>\n[HH:MM:SS] Failed: <n>\n[HH:MM:SS] Duration: <d>\n"
func (cl *ConsoleLogger) LogOrganizeSummary(report *executor.Report) {
	if cl.writer == nil || report == nil {
		return
	}

	// Summary logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(report.Duration)

	var output string

	if cl.colorOutput {
		// Colorized summary
		header := color.New(color.Bold).Sprint("=== Organize Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		output += fmt.Sprintf("[%s] Total files: %d\n", ts, report.TotalFiles)

		// Green for placed files
		placedText := color.New(color.FgGreen).Sprintf("Placed: %d", report.ProcessedFiles)
		output += fmt.Sprintf("[%s] %s\n", ts, placedText)

		// Red for failed files if any, otherwise show in default color
		if report.FailedFiles > 0 {
			failedText := color.New(color.FgRed).Sprintf("Failed: %d", report.FailedFiles)
			output += fmt.Sprintf("[%s] %s\n", ts, failedText)
		} else {
			output += fmt.Sprintf("[%s] Failed: %d\n", ts, report.FailedFiles)
		}

		if report.SkippedFiles > 0 {
			output += fmt.Sprintf("[%s] Skipped: %d\n", ts, report.SkippedFiles)
		}
		if report.RenamedFiles > 0 {
			output += fmt.Sprintf("[%s] Renamed: %d\n", ts, report.RenamedFiles)
		}

		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if report.FailedFiles > 0 {
			failedHeader := color.New(color.FgRed).Sprint("Failed files:")
			output += fmt.Sprintf("[%s] %s\n", ts, failedHeader)
			for _, p := range report.Placements {
				if p.Status != executor.StatusFailed {
					continue
				}
				fileName := color.New(color.FgRed).Sprint(filepath.Base(p.Source))
				output += fmt.Sprintf("[%s]   - %s: %s\n", ts, fileName, p.Error)
			}
		}
	} else {
		// Plain text summary
		output = fmt.Sprintf("[%s] === Organize Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Total files: %d\n", ts, report.TotalFiles)
		output += fmt.Sprintf("[%s] Placed: %d\n", ts, report.ProcessedFiles)
		output += fmt.Sprintf("[%s] Failed: %d\n", ts, report.FailedFiles)

		if report.SkippedFiles > 0 {
			output += fmt.Sprintf("[%s] Skipped: %d\n", ts, report.SkippedFiles)
		}
		if report.RenamedFiles > 0 {
			output += fmt.Sprintf("[%s] Renamed: %d\n", ts, report.RenamedFiles)
		}

		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if report.FailedFiles > 0 {
			output += fmt.Sprintf("[%s] Failed files:\n", ts)
			for _, p := range report.Placements {
				if p.Status != executor.StatusFailed {
					continue
				}
				output += fmt.Sprintf("[%s]   - %s: %s\n", ts, filepath.Base(p.Source), p.Error)
			}
		}
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// LogProgress logs real-time file placement progress with a bar and counts.
// Format: "[HH:MM:SS] Progress: [====      ] 4/8 (50%)"
// Handles edge cases: zero files, all placed.
func (cl *ConsoleLogger) LogProgress(processed, total int) {
	if cl.writer == nil {
		return
	}

	// Progress logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	// Calculate percentage
	var percentage int
	if total == 0 {
		percentage = 0
	} else {
		percentage = (processed * 100) / total
		if percentage > 100 {
			percentage = 100
		}
	}

	// Create progress bar using ProgressBar component
	pb := NewProgressBar(total, 10, false)
	pb.Update(processed)

	progressMsg := fmt.Sprintf("Progress: %s", pb.Render())

	var output string
	if cl.colorOutput {
		// Apply cyan color for in-progress, green for complete
		if percentage < 100 {
			progressMsg = color.New(color.FgCyan).Sprint(progressMsg)
		} else if percentage == 100 && total > 0 {
			progressMsg = color.New(color.FgGreen).Sprint(progressMsg)
		}
		output = fmt.Sprintf("[%s] %s\n", ts, progressMsg)
	} else {
		output = fmt.Sprintf("[%s] %s\n", ts, progressMsg)
	}

	cl.writer.Write([]byte(output))
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogTrace is a no-op implementation.
func (n *NoOpLogger) LogTrace(message string) {
}

// LogDebug is a no-op implementation.
func (n *NoOpLogger) LogDebug(message string) {
}

// LogInfo is a no-op implementation.
func (n *NoOpLogger) LogInfo(message string) {
}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {
}

// LogError is a no-op implementation.
func (n *NoOpLogger) LogError(message string) {
}

// LogScanStart is a no-op implementation.
func (n *NoOpLogger) LogScanStart(root string) {
}

// LogScanComplete is a no-op implementation.
func (n *NoOpLogger) LogScanComplete(root string, stats tree.Stats, duration time.Duration) {
}

// LogPlacement is a no-op implementation.
func (n *NoOpLogger) LogPlacement(p executor.Placement) error {
	return nil
}

// LogOrganizeSummary is a no-op implementation.
func (n *NoOpLogger) LogOrganizeSummary(report *executor.Report) {
}

// LogProgress is a no-op implementation.
func (n *NoOpLogger) LogProgress(processed, total int) {
}
