// Package organizer exposes the scan, structure and organize operations
// behind a request/response boundary suitable for embedding hosts. Every
// failure is carried back as a structured response with a success flag
// and an error message; nothing escapes as a panic or a fabricated
// result.
package organizer

import (
	"fmt"
	"strings"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/executor"
	"github.com/harrison/tidydir/internal/progress"
	"github.com/harrison/tidydir/internal/scanner"
	"github.com/harrison/tidydir/internal/synthesize"
	"github.com/harrison/tidydir/internal/tree"
)

// Logger defines the interface for logging boundary operations.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
func (nopLogger) LogError(string) {}

// ScanRequest asks for the typed tree under a directory.
type ScanRequest struct {
	DirPath   string `json:"dirPath"`
	Recursive bool   `json:"recursive"`
}

// ScanResponse carries the scanned tree or a failure. Trees serialize
// through tree.Node's wire encoding.
type ScanResponse struct {
	Success bool       `json:"success"`
	Tree    *tree.Node `json:"tree,omitempty"`
	Error   string     `json:"error,omitempty"`

	// Stats aggregates the scanned tree for display. It stays off the
	// wire.
	Stats *tree.Stats `json:"-"`
}

// StructureRequest asks for a proposed structure without touching disk.
// DryRun is accepted for protocol compatibility; structure generation
// never mutates the filesystem regardless of its value.
type StructureRequest struct {
	InputPath  string `json:"inputPath"`
	OutputPath string `json:"outputPath"`
	Mode       string `json:"mode"`
	DryRun     bool   `json:"dryRun"`
	Recursive  bool   `json:"recursive"`
}

// StructureResponse carries the proposed tree or a failure.
type StructureResponse struct {
	Success bool       `json:"success"`
	Tree    *tree.Node `json:"tree,omitempty"`
	Error   string     `json:"error,omitempty"`

	// Summary reports what the proposal did with the scanned files. It
	// stays off the wire.
	Summary *synthesize.Summary `json:"-"`
}

// OrganizeRequest asks for files to be placed under OutputPath.
type OrganizeRequest struct {
	InputPath  string `json:"inputPath"`
	OutputPath string `json:"outputPath"`
	Mode       string `json:"mode"`
	Recursive  bool   `json:"recursive"`
}

// OrganizeResponse summarizes an execution. Per-file placement failures
// leave Success true with the counts telling the story; Success false
// means the operation as a whole did not run.
type OrganizeResponse struct {
	Success        bool   `json:"success"`
	OutputPath     string `json:"outputPath,omitempty"`
	ProcessedFiles int    `json:"processedFiles"`
	TotalFiles     int    `json:"totalFiles"`
	FailedFiles    int    `json:"failedFiles"`
	Error          string `json:"error,omitempty"`

	// Report carries the full per-placement detail for hosts that
	// record history or operation logs. It stays off the wire.
	Report *executor.Report `json:"-"`
}

// Options configure a Service.
type Options struct {
	// Classifier to use for structure and organize requests. Nil means
	// the built-in rules.
	Classifier *classify.Classifier

	// Log receives operational logging. Nil discards it.
	Log Logger

	// MaxDepth bounds recursive scans. Zero or negative means the
	// scanner default.
	MaxDepth int

	// ExcludeDirs are directory names excluded in addition to the
	// scanner's built-ins.
	ExcludeDirs []string

	// Transfer selects move or copy for organize requests. Empty means
	// move.
	Transfer executor.Transfer
}

// Service answers boundary requests. One Service is safe for sequential
// use by a single host; overlapping operations against the same root
// must be serialized by the caller.
type Service struct {
	classifier  *classify.Classifier
	log         Logger
	maxDepth    int
	excludeDirs []string
	transfer    executor.Transfer
}

// NewService creates a Service from options.
func NewService(opts Options) *Service {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New()
	}
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = scanner.DefaultMaxDepth
	}
	transfer := opts.Transfer
	if transfer == "" {
		transfer = executor.TransferMove
	}
	return &Service{
		classifier:  classifier,
		log:         log,
		maxDepth:    maxDepth,
		excludeDirs: opts.ExcludeDirs,
		transfer:    transfer,
	}
}

func (s *Service) scanOptions(recursive bool) scanner.Options {
	return scanner.Options{
		MaxDepth:    s.maxDepth,
		Recursive:   recursive,
		ExcludeDirs: s.excludeDirs,
		Log:         s.log,
	}
}

// Scan enumerates the requested directory and returns its typed tree.
func (s *Service) Scan(req ScanRequest) ScanResponse {
	if strings.TrimSpace(req.DirPath) == "" {
		return ScanResponse{Error: "dirPath is required"}
	}

	result, err := scanner.Scan(req.DirPath, s.scanOptions(req.Recursive))
	if err != nil {
		s.log.LogError(fmt.Sprintf("scan %s: %v", req.DirPath, err))
		return ScanResponse{Error: err.Error()}
	}

	stats := tree.CollectStats(result.Tree)
	return ScanResponse{Success: true, Tree: result.Tree, Stats: &stats}
}

// Structure scans the input directory and returns the proposed tree for
// the requested mode. It never mutates the filesystem; applying the
// proposal is a separate Organize request.
func (s *Service) Structure(req StructureRequest, sink progress.Sink) StructureResponse {
	policy, err := classify.ParsePolicy(req.Mode)
	if err != nil {
		return StructureResponse{Error: err.Error()}
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return StructureResponse{Error: "inputPath is required"}
	}

	tracker := progress.NewTracker(sink)
	tracker.Publish(5, fmt.Sprintf("Scanning %s", req.InputPath))

	result, err := scanner.Scan(req.InputPath, s.scanOptions(req.Recursive))
	if err != nil {
		s.log.LogError(fmt.Sprintf("structure scan %s: %v", req.InputPath, err))
		return StructureResponse{Error: err.Error()}
	}

	tracker.Publish(60, "Building proposed structure")
	proposed, summary := synthesize.Build(result.Tree, policy, s.classifier)

	tracker.Publish(100, "Structure ready")
	s.log.LogDebug(fmt.Sprintf("proposed structure for %s: %d of %d files placed",
		req.InputPath, summary.PlacedFiles, summary.TotalFiles))

	return StructureResponse{Success: true, Tree: proposed, Summary: summary}
}

// Organize places the input directory's files under the output path. The
// scan, classification and structure are re-derived from the current
// filesystem state, never replayed from an earlier preview.
func (s *Service) Organize(req OrganizeRequest, sink progress.Sink) OrganizeResponse {
	policy, err := classify.ParsePolicy(req.Mode)
	if err != nil {
		return OrganizeResponse{Error: err.Error()}
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return OrganizeResponse{Error: "inputPath is required"}
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return OrganizeResponse{Error: "outputPath is required"}
	}

	exec := executor.New(s.classifier, s.log)
	report, err := exec.Run(executor.Request{
		RootPath:    req.InputPath,
		OutputPath:  req.OutputPath,
		Policy:      policy,
		Transfer:    s.transfer,
		Recursive:   req.Recursive,
		MaxDepth:    s.maxDepth,
		ExcludeDirs: s.excludeDirs,
	}, sink)
	if err != nil {
		s.log.LogError(fmt.Sprintf("organize %s: %v", req.InputPath, err))
		return OrganizeResponse{Error: err.Error()}
	}

	return OrganizeResponse{
		Success:        true,
		OutputPath:     report.OutputPath,
		ProcessedFiles: report.ProcessedFiles,
		TotalFiles:     report.TotalFiles,
		FailedFiles:    report.FailedFiles,
		Report:         report,
	}
}
