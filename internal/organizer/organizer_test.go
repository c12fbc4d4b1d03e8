package organizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/tidydir/internal/executor"
	"github.com/harrison/tidydir/internal/progress"
	"github.com/harrison/tidydir/internal/tree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func childNames(n *tree.Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		names = append(names, child.Name)
	}
	return names
}

func findChild(t *testing.T, n *tree.Node, name string) *tree.Node {
	t.Helper()
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	t.Fatalf("child %q not found in %v", name, childNames(n))
	return nil
}

func TestScanReturnsTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "docs", "notes.md"), "notes")

	svc := NewService(Options{})
	resp := svc.Scan(ScanRequest{DirPath: root, Recursive: true})

	if !resp.Success {
		t.Fatalf("Scan failed: %s", resp.Error)
	}
	if resp.Error != "" {
		t.Errorf("Error = %q on success", resp.Error)
	}
	if resp.Tree == nil {
		t.Fatal("Tree is nil on success")
	}
	if resp.Tree.Kind != tree.KindFolder {
		t.Errorf("root Kind = %v, want folder", resp.Tree.Kind)
	}
	if resp.Tree.OS == "" {
		t.Error("root OS is empty")
	}

	got := childNames(resp.Tree)
	want := []string{"docs", "a.txt", "b.txt"}
	if len(got) != len(want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children = %v, want %v", got, want)
		}
	}

	if resp.Stats == nil {
		t.Fatal("Stats is nil on success")
	}
	if resp.Stats.Files != 3 || resp.Stats.Folders != 1 {
		t.Errorf("Stats = %+v, want 3 files, 1 folder", resp.Stats)
	}

	file := findChild(t, resp.Tree, "a.txt")
	if file.Kind != tree.KindFile {
		t.Errorf("a.txt Kind = %v, want file", file.Kind)
	}
	if file.SizeBytes != 1 {
		t.Errorf("a.txt SizeBytes = %d, want 1", file.SizeBytes)
	}
	if file.ModifiedAt.IsZero() {
		t.Error("a.txt ModifiedAt is zero")
	}
	if len(file.Children) != 0 {
		t.Errorf("file node has %d children", len(file.Children))
	}
}

func TestScanMissingRoot(t *testing.T) {
	svc := NewService(Options{})
	resp := svc.Scan(ScanRequest{
		DirPath:   filepath.Join(t.TempDir(), "gone"),
		Recursive: true,
	})

	if resp.Success {
		t.Error("Success = true for missing root")
	}
	if resp.Error == "" {
		t.Error("Error is empty for missing root")
	}
	if resp.Tree != nil {
		t.Error("Tree is not nil for missing root")
	}
}

func TestScanEmptyDirPath(t *testing.T) {
	svc := NewService(Options{})
	resp := svc.Scan(ScanRequest{})

	if resp.Success {
		t.Error("Success = true for empty dirPath")
	}
	if resp.Error != "dirPath is required" {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestScanNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "top")
	writeFile(t, filepath.Join(root, "sub", "inner.txt"), "inner")

	svc := NewService(Options{})
	resp := svc.Scan(ScanRequest{DirPath: root, Recursive: false})

	if !resp.Success {
		t.Fatalf("Scan failed: %s", resp.Error)
	}

	sub := findChild(t, resp.Tree, "sub")
	if sub.Kind != tree.KindIgnoredFolder {
		t.Errorf("sub Kind = %v, want ignored_folder", sub.Kind)
	}
	if len(sub.Children) != 0 {
		t.Errorf("ignored folder has %d children", len(sub.Children))
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "inner.txt") {
		t.Error("non-recursive scan leaked a file from inside sub/")
	}
}

func TestStructureProposesTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "pdf")
	writeFile(t, filepath.Join(root, "photo.png"), "png")

	svc := NewService(Options{})
	resp := svc.Structure(StructureRequest{
		InputPath: root,
		Mode:      "content",
		Recursive: true,
	}, nil)

	if !resp.Success {
		t.Fatalf("Structure failed: %s", resp.Error)
	}
	if resp.Tree.Name != "" {
		t.Errorf("proposed root Name = %q, want empty", resp.Tree.Name)
	}

	got := childNames(resp.Tree)
	want := []string{"Documents", "Images"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("categories = %v, want %v", got, want)
	}

	docs := findChild(t, resp.Tree, "Documents")
	if len(docs.Children) != 1 || docs.Children[0].Name != "report.pdf" {
		t.Errorf("Documents children = %v", childNames(docs))
	}

	if resp.Summary == nil {
		t.Fatal("Summary is nil on success")
	}
	if resp.Summary.TotalFiles != 2 || resp.Summary.PlacedFiles != 2 {
		t.Errorf("Summary = %+v, want 2 total, 2 placed", resp.Summary)
	}

	if !exists(filepath.Join(root, "report.pdf")) {
		t.Error("Structure moved a source file")
	}
}

func TestStructureDryRunFlagIsInert(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "song.mp3"), "mp3")

	svc := NewService(Options{})
	dry := svc.Structure(StructureRequest{InputPath: root, Mode: "content", DryRun: true, Recursive: true}, nil)
	wet := svc.Structure(StructureRequest{InputPath: root, Mode: "content", DryRun: false, Recursive: true}, nil)

	dryJSON, err := json.Marshal(dry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	wetJSON, err := json.Marshal(wet)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(dryJSON) != string(wetJSON) {
		t.Errorf("dryRun changed the proposal:\n%s\n%s", dryJSON, wetJSON)
	}
	if !exists(filepath.Join(root, "song.mp3")) {
		t.Error("structure generation touched the source")
	}
}

func TestStructureInvalidMode(t *testing.T) {
	svc := NewService(Options{})
	resp := svc.Structure(StructureRequest{InputPath: t.TempDir(), Mode: "alphabetical"}, nil)

	if resp.Success {
		t.Error("Success = true for invalid mode")
	}
	if !strings.Contains(resp.Error, "invalid mode") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestStructureProgressEvents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clip.mp4"), "mp4")

	var events []progress.Event
	sink := progress.FuncSink(func(e progress.Event) {
		events = append(events, e)
	})

	svc := NewService(Options{})
	resp := svc.Structure(StructureRequest{InputPath: root, Mode: "content", Recursive: true}, sink)
	if !resp.Success {
		t.Fatalf("Structure failed: %s", resp.Error)
	}

	if len(events) == 0 {
		t.Fatal("no progress events published")
	}
	last := 0
	for _, e := range events {
		if e.Percent < last {
			t.Errorf("progress went backwards: %d after %d", e.Percent, last)
		}
		if e.Percent < 0 || e.Percent > 100 {
			t.Errorf("progress %d out of range", e.Percent)
		}
		if e.Message == "" {
			t.Error("progress event with empty message")
		}
		last = e.Percent
	}
	if events[len(events)-1].Percent != 100 {
		t.Errorf("final progress = %d, want 100", events[len(events)-1].Percent)
	}
	if !strings.Contains(events[0].Message, "Scanning") {
		t.Errorf("first event message = %q", events[0].Message)
	}
}

func TestOrganizeEndToEnd(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "organized")
	writeFile(t, filepath.Join(root, "report.pdf"), "pdf")
	writeFile(t, filepath.Join(root, "photo.png"), "png")

	svc := NewService(Options{})
	resp := svc.Organize(OrganizeRequest{
		InputPath:  root,
		OutputPath: out,
		Mode:       "content",
		Recursive:  true,
	}, nil)

	if !resp.Success {
		t.Fatalf("Organize failed: %s", resp.Error)
	}
	if resp.ProcessedFiles != 2 || resp.TotalFiles != 2 {
		t.Errorf("processed %d/%d, want 2/2", resp.ProcessedFiles, resp.TotalFiles)
	}
	if resp.FailedFiles != 0 {
		t.Errorf("FailedFiles = %d, want 0", resp.FailedFiles)
	}
	if resp.OutputPath == "" {
		t.Error("OutputPath is empty")
	}
	if resp.Report == nil {
		t.Fatal("Report is nil")
	}
	if len(resp.Report.Placements) != 2 {
		t.Errorf("Placements = %d, want 2", len(resp.Report.Placements))
	}

	if !exists(filepath.Join(out, "Documents", "report.pdf")) {
		t.Error("report.pdf not under Documents")
	}
	if !exists(filepath.Join(out, "Images", "photo.png")) {
		t.Error("photo.png not under Images")
	}
	if exists(filepath.Join(root, "report.pdf")) {
		t.Error("move transfer left the source file behind")
	}
}

func TestOrganizeCopyTransfer(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "organized")
	writeFile(t, filepath.Join(root, "archive.zip"), "zip")

	svc := NewService(Options{Transfer: executor.TransferCopy})
	resp := svc.Organize(OrganizeRequest{
		InputPath:  root,
		OutputPath: out,
		Mode:       "content",
		Recursive:  true,
	}, nil)

	if !resp.Success {
		t.Fatalf("Organize failed: %s", resp.Error)
	}
	if !exists(filepath.Join(out, "Archives", "archive.zip")) {
		t.Error("archive.zip not under Archives")
	}
	if !exists(filepath.Join(root, "archive.zip")) {
		t.Error("copy transfer removed the source file")
	}
}

func TestOrganizePartialFailureStaysSuccessful(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "organized")
	writeFile(t, filepath.Join(root, "report.pdf"), "pdf")
	writeFile(t, filepath.Join(root, "photo.png"), "png")
	// Occupy one destination so exactly one placement fails.
	writeFile(t, filepath.Join(out, "Documents", "report.pdf"), "already here")

	svc := NewService(Options{})
	resp := svc.Organize(OrganizeRequest{
		InputPath:  root,
		OutputPath: out,
		Mode:       "content",
		Recursive:  true,
	}, nil)

	if !resp.Success {
		t.Fatalf("partial failure flipped Success: %s", resp.Error)
	}
	if resp.ProcessedFiles != 1 {
		t.Errorf("ProcessedFiles = %d, want 1", resp.ProcessedFiles)
	}
	if resp.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d, want 1", resp.FailedFiles)
	}
	if resp.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", resp.TotalFiles)
	}
}

func TestOrganizeScanFailureLeavesOutputUntouched(t *testing.T) {
	out := filepath.Join(t.TempDir(), "organized")

	svc := NewService(Options{})
	resp := svc.Organize(OrganizeRequest{
		InputPath:  filepath.Join(t.TempDir(), "gone"),
		OutputPath: out,
		Mode:       "content",
		Recursive:  true,
	}, nil)

	if resp.Success {
		t.Error("Success = true for unreadable input")
	}
	if resp.Error == "" {
		t.Error("Error is empty for unreadable input")
	}
	if exists(out) {
		t.Error("failed organize created the output directory")
	}
}

func TestOrganizeValidatesRequest(t *testing.T) {
	svc := NewService(Options{})
	root := t.TempDir()

	tests := []struct {
		name    string
		req     OrganizeRequest
		wantErr string
	}{
		{"missing mode", OrganizeRequest{InputPath: root, OutputPath: root}, "invalid mode"},
		{"missing input", OrganizeRequest{OutputPath: root, Mode: "content"}, "inputPath is required"},
		{"missing output", OrganizeRequest{InputPath: root, Mode: "content"}, "outputPath is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.Organize(tt.req, nil)
			if resp.Success {
				t.Error("Success = true")
			}
			if !strings.Contains(resp.Error, tt.wantErr) {
				t.Errorf("Error = %q, want containing %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestResponseWireShape(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "organized")
	writeFile(t, filepath.Join(root, "doc.txt"), "doc")

	svc := NewService(Options{})

	scanRaw, err := json.Marshal(svc.Scan(ScanRequest{DirPath: root, Recursive: true}))
	if err != nil {
		t.Fatalf("marshal scan: %v", err)
	}
	var scanFields map[string]any
	if err := json.Unmarshal(scanRaw, &scanFields); err != nil {
		t.Fatalf("unmarshal scan: %v", err)
	}
	if scanFields["success"] != true {
		t.Errorf("scan success field = %v", scanFields["success"])
	}
	treeField, ok := scanFields["tree"].(map[string]any)
	if !ok {
		t.Fatal("scan response has no tree object")
	}
	if treeField["type"] != "folder" {
		t.Errorf("tree node type = %v, want folder", treeField["type"])
	}
	if _, ok := treeField["children"]; !ok {
		t.Error("tree node has no children field")
	}
	if _, ok := scanFields["error"]; ok {
		t.Error("successful scan response carries an error field")
	}
	for _, key := range []string{"Stats", "stats"} {
		if _, ok := scanFields[key]; ok {
			t.Errorf("scan response leaked %q onto the wire", key)
		}
	}

	orgRaw, err := json.Marshal(svc.Organize(OrganizeRequest{
		InputPath:  root,
		OutputPath: out,
		Mode:       "content",
		Recursive:  true,
	}, nil))
	if err != nil {
		t.Fatalf("marshal organize: %v", err)
	}
	var orgFields map[string]any
	if err := json.Unmarshal(orgRaw, &orgFields); err != nil {
		t.Fatalf("unmarshal organize: %v", err)
	}
	for _, key := range []string{"success", "outputPath", "processedFiles", "totalFiles", "failedFiles"} {
		if _, ok := orgFields[key]; !ok {
			t.Errorf("organize response missing %q", key)
		}
	}
	for _, key := range []string{"Report", "report", "placements"} {
		if _, ok := orgFields[key]; ok {
			t.Errorf("organize response leaked %q onto the wire", key)
		}
	}

	failRaw, err := json.Marshal(svc.Scan(ScanRequest{DirPath: filepath.Join(root, "gone")}))
	if err != nil {
		t.Fatalf("marshal failed scan: %v", err)
	}
	var failFields map[string]any
	if err := json.Unmarshal(failRaw, &failFields); err != nil {
		t.Fatalf("unmarshal failed scan: %v", err)
	}
	if failFields["success"] != false {
		t.Errorf("failed scan success field = %v", failFields["success"])
	}
	if _, ok := failFields["error"]; !ok {
		t.Error("failed scan response has no error field")
	}
	if _, ok := failFields["tree"]; ok {
		t.Error("failed scan response carries a tree")
	}
}

func TestOpenOutputMissingPath(t *testing.T) {
	svc := NewService(Options{})
	resp := svc.OpenOutput(OpenRequest{Path: filepath.Join(t.TempDir(), "gone")})

	if resp.Success {
		t.Error("Success = true for missing path")
	}
	if !strings.Contains(resp.Error, "not accessible") {
		t.Errorf("Error = %q", resp.Error)
	}
}
