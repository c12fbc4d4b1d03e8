package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/tidydir/internal/executor"
	"github.com/harrison/tidydir/internal/tree"
)

// FileLogger logs run events to files in the .tidydir/logs/ directory.
// It creates timestamped per-run log files, per-operation detail logs,
// and maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and supports log level filtering to control message
// verbosity.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	opsDir   string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a new FileLogger that writes to .tidydir/logs/.
// It creates the log directory if it doesn't exist, opens a timestamped
// run log file, and creates/updates the latest.log symlink.
// Uses default log level "info".
func NewFileLogger() (*FileLogger, error) {
	// Default log directory is .tidydir/logs/ in current working directory
	logDir := filepath.Join(".tidydir", "logs")
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDir creates a new FileLogger with a custom log directory.
// This is useful for testing or custom deployments.
// Uses default log level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
// This is useful for testing or custom deployments.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create operations subdirectory
	opsDir := filepath.Join(logDir, "operations")
	if err := os.MkdirAll(opsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create operations directory: %w", err)
	}

	// Generate timestamped filename: run-YYYYMMDD-HHMMSS.log
	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	// Open run log file for writing
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	// Create/update latest.log symlink
	symlinkPath := filepath.Join(logDir, "latest.log")

	// Remove existing symlink if it exists
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}

	// Create new symlink pointing to current run log
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	// Normalize and validate log level
	normalizedLevel := normalizeLogLevel(logLevel)

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		opsDir:   opsDir,
		logLevel: normalizedLevel,
		mu:       sync.Mutex{},
	}

	// Write header to run log
	logger.writeRunLog("=== tidydir Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	configuredLevel := logLevelToInt(fl.logLevel)
	msgLevel := logLevelToInt(messageLevel)
	return msgLevel >= configuredLevel
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (fl *FileLogger) logWithLevel(level string, message string) {
	// Check if this level should be logged
	levelLower := strings.ToLower(level)
	if !fl.shouldLog(levelLower) {
		return
	}

	formatted := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message)
	fl.writeRunLog(formatted)
}

// LogScanStart logs the start of a directory scan at INFO level.
func (fl *FileLogger) LogScanStart(root string) {
	// Scan logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf(
		"[%s] Scanning %s\n",
		time.Now().Format("15:04:05"),
		root,
	)

	fl.writeRunLog(message)
}

// LogScanComplete logs the completion of a directory scan at INFO level.
// It records the entry counts, total size, and duration.
func (fl *FileLogger) LogScanComplete(root string, stats tree.Stats, duration time.Duration) {
	// Scan logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf(
		"[%s] %s scanned: %d files, %d folders, %s: duration %.1fs\n",
		time.Now().Format("15:04:05"),
		root,
		stats.Files,
		stats.Folders,
		formatBytes(stats.TotalBytes),
		duration.Seconds(),
	)

	fl.writeRunLog(message)
}

// LogPlacement logs the outcome of a single file placement at DEBUG level.
func (fl *FileLogger) LogPlacement(p executor.Placement) error {
	line := fmt.Sprintf("%s (%s): %s", filepath.Base(p.Source), p.Category, p.Status)
	if p.Error != "" {
		line += fmt.Sprintf(" (%s)", p.Error)
	}
	fl.logWithLevel("DEBUG", line)
	return nil
}

// LogOrganizeSummary logs the organize summary with final statistics at INFO level.
// It records total files, placed, failed, duration, and overall status.
func (fl *FileLogger) LogOrganizeSummary(report *executor.Report) {
	if report == nil {
		return
	}

	// Summary logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	timestamp := time.Now().Format("15:04:05")

	// Determine status
	status := "SUCCESS"
	if report.FailedFiles > 0 {
		if report.ProcessedFiles == 0 {
			status = "FAILED"
		} else {
			status = "PARTIAL"
		}
	}

	// Build summary output
	message := fmt.Sprintf(
		"\n[%s] === ORGANIZE SUMMARY ===\n"+
			"[%s] Operation:    %s\n"+
			"[%s] Total files:  %d\n"+
			"[%s] Placed:       %d\n"+
			"[%s] Failed:       %d\n"+
			"[%s] Skipped:      %d\n"+
			"[%s] Total time:   %.1fs\n"+
			"[%s] Status:       %s (%d/%d files placed)\n"+
			"[%s] Completed at: %s\n",
		timestamp,
		timestamp,
		report.ID,
		timestamp,
		report.TotalFiles,
		timestamp,
		report.ProcessedFiles,
		timestamp,
		report.FailedFiles,
		timestamp,
		report.SkippedFiles,
		timestamp,
		report.Duration.Seconds(),
		timestamp,
		status,
		report.ProcessedFiles,
		report.TotalFiles,
		timestamp,
		time.Now().Format(time.RFC3339),
	)

	fl.writeRunLog(message)
}

// LogReport writes a detailed record of an organize operation.
// It creates a separate log file for each operation in the operations/
// subdirectory, listing every placement with its outcome.
func (fl *FileLogger) LogReport(report *executor.Report) error {
	if report == nil {
		return nil
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	// Create operation log file: operations/<id>.log
	opLogPath := filepath.Join(fl.opsDir, fmt.Sprintf("%s.log", report.ID))

	file, err := os.OpenFile(opLogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create operation log file: %w", err)
	}
	defer file.Close()

	// Write operation details
	content := fmt.Sprintf("=== Operation %s ===\n", report.ID)
	content += fmt.Sprintf("Source: %s\n", report.RootPath)
	content += fmt.Sprintf("Output: %s\n", report.OutputPath)
	content += fmt.Sprintf("Mode: %s\n", report.Policy)
	content += fmt.Sprintf("Transfer: %s\n", report.Transfer)
	content += fmt.Sprintf("Started: %s\n", report.StartedAt.Format(time.RFC3339))
	content += fmt.Sprintf("Duration: %.1fs\n", report.Duration.Seconds())
	content += fmt.Sprintf("Files: %d total, %d placed, %d failed, %d skipped, %d renamed\n",
		report.TotalFiles, report.ProcessedFiles, report.FailedFiles, report.SkippedFiles, report.RenamedFiles)
	content += "\n"

	if len(report.Placements) > 0 {
		content += "=== Placements ===\n\n"
		for _, p := range report.Placements {
			switch p.Status {
			case executor.StatusFailed:
				content += fmt.Sprintf("failed %s: %s\n", p.Source, p.Error)
			default:
				content += fmt.Sprintf("%s %s -> %s\n", p.Status, p.Source, p.Destination)
			}
		}
		content += "\n"
	}

	content += fmt.Sprintf("Completed at: %s\n", time.Now().Format(time.RFC3339))

	_, err = file.WriteString(content)
	if err != nil {
		return fmt.Errorf("failed to write operation log: %w", err)
	}

	return nil
}

// LogProgress logs the current placement progress (no-op for file logger).
// Progress is displayed on console but not written to log files.
func (fl *FileLogger) LogProgress(processed, total int) {
	// No-op: progress bars are console-only for now
}

// Close flushes and closes the run log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}
