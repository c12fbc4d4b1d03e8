// Package executor applies proposed reorganization structures to the
// filesystem.
//
// Execution re-derives the proposal from the live source tree instead
// of trusting a structure a client held onto; synthesis is
// deterministic, so a preview shown moments earlier and the structure
// applied here agree unless the disk changed in between. One file
// failing to place never aborts the batch: the failure is recorded in
// the report and the executor moves on.
package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/progress"
	"github.com/harrison/tidydir/internal/scanner"
	"github.com/harrison/tidydir/internal/synthesize"
	"github.com/harrison/tidydir/internal/tree"
)

// Transfer selects how files reach their destinations.
type Transfer string

const (
	// TransferMove renames files into place, copying and deleting when
	// the output lives on another device.
	TransferMove Transfer = "move"

	// TransferCopy leaves sources untouched.
	TransferCopy Transfer = "copy"
)

// ParseTransfer validates a transfer mode from config or the CLI.
func ParseTransfer(s string) (Transfer, error) {
	switch Transfer(strings.ToLower(strings.TrimSpace(s))) {
	case TransferMove:
		return TransferMove, nil
	case TransferCopy:
		return TransferCopy, nil
	default:
		return "", fmt.Errorf("invalid transfer %q, must be one of: move, copy", s)
	}
}

// Request describes a single execution.
type Request struct {
	RootPath    string
	OutputPath  string
	Policy      classify.Policy
	Transfer    Transfer
	Recursive   bool
	MaxDepth    int
	ExcludeDirs []string
}

// Placement statuses recorded per file.
const (
	StatusPlaced = "placed"
	StatusFailed = "failed"
)

// Placement records the outcome for one file.
type Placement struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes an execution. ProcessedFiles counts successful
// placements; FailedFiles counts per-file failures that did not abort
// the batch; SkippedFiles counts files the policy could not place
// (date policy, unknown timestamp).
type Report struct {
	ID             string          `json:"id"`
	RootPath       string          `json:"rootPath"`
	OutputPath     string          `json:"outputPath"`
	Policy         classify.Policy `json:"mode"`
	Transfer       Transfer        `json:"transfer"`
	StartedAt      time.Time       `json:"startedAt"`
	Duration       time.Duration   `json:"duration"`
	TotalFiles     int             `json:"totalFiles"`
	ProcessedFiles int             `json:"processedFiles"`
	FailedFiles    int             `json:"failedFiles"`
	SkippedFiles   int             `json:"skippedFiles"`
	RenamedFiles   int             `json:"renamedFiles"`
	Placements     []Placement     `json:"placements"`
}

// Logger is the logging interface executions write to.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// nopLogger discards execution logging.
type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
func (nopLogger) LogError(string) {}

// Executor runs executions under a fixed classifier and logger.
type Executor struct {
	classifier *classify.Classifier
	log        Logger
}

// New creates an Executor. A nil classifier uses the default rule
// tables; a nil logger discards messages.
func New(classifier *classify.Classifier, log Logger) *Executor {
	if classifier == nil {
		classifier = classify.New()
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Executor{classifier: classifier, log: log}
}

// placeItem is one file queued for placement.
type placeItem struct {
	segments []string
	file     *tree.Node
}

// Run scans the source, re-derives the proposal and places every file.
//
// The source is scanned before the output directory is created, so a
// failing source leaves the output path untouched. Scan and output
// directory failures abort with an error; everything after that is
// per-file and lands in the report. Progress flows through sink, which
// may be nil.
func (e *Executor) Run(req Request, sink progress.Sink) (*Report, error) {
	start := time.Now()
	tracker := progress.NewTracker(sink)

	transfer := req.Transfer
	if transfer == "" {
		transfer = TransferMove
	}

	e.log.LogInfo(fmt.Sprintf("organizing %s into %s (mode %s, %s)",
		req.RootPath, req.OutputPath, req.Policy, transfer))

	tracker.Publish(2, "Scanning source directory")
	scanned, err := scanner.Scan(req.RootPath, scanner.Options{
		MaxDepth:    req.MaxDepth,
		Recursive:   req.Recursive,
		ExcludeDirs: req.ExcludeDirs,
		Log:         e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}

	tracker.Publish(30, "Building target structure")
	proposed, summary := synthesize.Build(scanned.Tree, req.Policy, e.classifier)

	outputPath, err := ensureOutputDir(req.OutputPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:           uuid.New().String(),
		RootPath:     scanned.Tree.Path,
		OutputPath:   outputPath,
		Policy:       req.Policy,
		Transfer:     transfer,
		StartedAt:    start,
		TotalFiles:   summary.TotalFiles,
		SkippedFiles: summary.SkippedFiles,
		RenamedFiles: summary.RenamedFiles,
	}

	items := collectItems(proposed)
	tracker.Publish(40, fmt.Sprintf("Placing %d files", len(items)))

	for i, item := range items {
		placement := e.place(outputPath, item, transfer)
		report.Placements = append(report.Placements, placement)

		switch placement.Status {
		case StatusPlaced:
			report.ProcessedFiles++
			e.log.LogDebug(fmt.Sprintf("placed %s -> %s", placement.Source, placement.Destination))
		case StatusFailed:
			report.FailedFiles++
			e.log.LogWarn(fmt.Sprintf("failed to place %s: %s", placement.Source, placement.Error))
		}

		percent := 40 + (i+1)*55/len(items)
		tracker.Publish(percent, fmt.Sprintf("Placed %d of %d files", i+1, len(items)))
	}

	report.Duration = time.Since(start)
	tracker.Publish(100, "Organization complete")
	e.log.LogInfo(fmt.Sprintf("organized %d/%d files into %s (%d failed, %d skipped)",
		report.ProcessedFiles, report.TotalFiles, outputPath,
		report.FailedFiles, report.SkippedFiles))

	return report, nil
}

// collectItems flattens the proposed tree into placement work, carrying
// each file's category folder path.
func collectItems(proposed *tree.Node) []placeItem {
	var items []placeItem
	var walk func(n *tree.Node, segments []string)
	walk = func(n *tree.Node, segments []string) {
		for _, child := range n.Children {
			switch child.Kind {
			case tree.KindFile:
				items = append(items, placeItem{segments: segments, file: child})
			case tree.KindFolder:
				next := append(append([]string{}, segments...), child.Name)
				walk(child, next)
			case tree.KindIgnoredFolder:
				// Proposals never contain these.
			}
		}
	}
	walk(proposed, nil)
	return items
}

// place moves or copies one file into its category folder. All failures
// are captured in the returned placement; nothing here aborts the run.
func (e *Executor) place(outputPath string, item placeItem, transfer Transfer) Placement {
	placement := Placement{
		Source:   item.file.OriginalPath,
		Category: strings.Join(item.segments, "/"),
	}

	destDir, err := safeJoin(outputPath, item.segments...)
	if err != nil {
		placement.Status = StatusFailed
		placement.Error = err.Error()
		return placement
	}

	dest, err := safeJoin(destDir, item.file.Name)
	if err != nil {
		placement.Status = StatusFailed
		placement.Error = err.Error()
		return placement
	}
	placement.Destination = dest

	if err := transferFile(item.file.OriginalPath, destDir, dest, transfer); err != nil {
		placement.Status = StatusFailed
		placement.Error = err.Error()
		return placement
	}

	placement.Status = StatusPlaced
	return placement
}
