package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/tidydir/internal/tree"
)

// writeFile creates a file with throwaway content, failing the test on
// error.
func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestScanOrdersFoldersBeforeFiles verifies sibling ordering: folders
// first, then files, names compared case-insensitively.
func TestScanOrdersFoldersBeforeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"))
	writeFile(t, filepath.Join(dir, "a.txt"))
	if err := os.Mkdir(filepath.Join(dir, "A"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Scan(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	children := result.Tree.Children
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	want := []string{"A", "a.txt", "b.txt"}
	for i, name := range want {
		if children[i].Name != name {
			t.Errorf("children[%d] = %q, want %q", i, children[i].Name, name)
		}
	}
	if children[0].Kind != tree.KindFolder {
		t.Errorf("children[0].Kind = %v, want folder", children[0].Kind)
	}
}

// TestScanMaxDepthZero verifies a zero bound yields the root with no
// children at all.
func TestScanMaxDepthZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"))

	result, err := Scan(dir, Options{MaxDepth: 0, Recursive: true})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Tree.Children) != 0 {
		t.Errorf("got %d children, want 0", len(result.Tree.Children))
	}
	if result.Tree.Kind != tree.KindFolder {
		t.Errorf("root kind = %v, want folder", result.Tree.Kind)
	}
}

// TestScanDepthBound verifies directories at the bound are listed as
// ignored folders and nothing below them appears.
func TestScanDepthBound(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	deeper := filepath.Join(sub, "deeper")
	if err := os.MkdirAll(deeper, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(sub, "mid.txt"))
	writeFile(t, filepath.Join(deeper, "deep.txt"))

	result, err := Scan(dir, Options{MaxDepth: 2, Recursive: true})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Tree.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(result.Tree.Children))
	}
	subNode := result.Tree.Children[0]
	if subNode.Kind != tree.KindFolder {
		t.Fatalf("sub kind = %v, want folder", subNode.Kind)
	}

	var sawDeeper, sawMid bool
	for _, child := range subNode.Children {
		switch child.Name {
		case "deeper":
			sawDeeper = true
			if child.Kind != tree.KindIgnoredFolder {
				t.Errorf("deeper kind = %v, want ignored folder", child.Kind)
			}
			if len(child.Children) != 0 {
				t.Errorf("deeper has %d children, want 0", len(child.Children))
			}
		case "mid.txt":
			sawMid = true
		case "deep.txt":
			t.Errorf("deep.txt appeared above its depth bound")
		}
	}
	if !sawDeeper || !sawMid {
		t.Errorf("sub children incomplete: sawDeeper=%v sawMid=%v", sawDeeper, sawMid)
	}
}

// TestScanNonRecursive verifies sub-folders are listed as ignored
// markers and their contents never appear.
func TestScanNonRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "top.txt"))
	writeFile(t, filepath.Join(sub, "nested.txt"))

	result, err := Scan(dir, Options{MaxDepth: DefaultMaxDepth, Recursive: false})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Tree.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(result.Tree.Children))
	}
	subNode := result.Tree.Children[0]
	if subNode.Name != "sub" || subNode.Kind != tree.KindIgnoredFolder {
		t.Errorf("children[0] = %q kind %v, want sub as ignored folder", subNode.Name, subNode.Kind)
	}
	if len(subNode.Children) != 0 {
		t.Errorf("ignored folder has %d children, want 0", len(subNode.Children))
	}
	if result.Tree.Children[1].Name != "top.txt" {
		t.Errorf("children[1] = %q, want top.txt", result.Tree.Children[1].Name)
	}
}

// TestScanExcludesHiddenAndReserved verifies hidden entries and
// reserved directory names never appear, while a file that happens to
// share a reserved name survives.
func TestScanExcludesHiddenAndReserved(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".git", "node_modules", "docs"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
	writeFile(t, filepath.Join(dir, ".hidden"))
	writeFile(t, filepath.Join(dir, "visible.txt"))
	writeFile(t, filepath.Join(dir, "vendor"))
	writeFile(t, filepath.Join(dir, ".git", "config"))
	writeFile(t, filepath.Join(dir, "node_modules", "pkg.json"))

	result, err := Scan(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	names := make(map[string]tree.Kind)
	for _, child := range result.Tree.Children {
		names[child.Name] = child.Kind
	}

	for _, banned := range []string{".git", "node_modules", ".hidden", "config", "pkg.json"} {
		if _, ok := names[banned]; ok {
			t.Errorf("%q should have been excluded", banned)
		}
	}
	if _, ok := names["docs"]; !ok {
		t.Errorf("docs folder missing from scan")
	}
	if _, ok := names["visible.txt"]; !ok {
		t.Errorf("visible.txt missing from scan")
	}
	if kind, ok := names["vendor"]; !ok || kind != tree.KindFile {
		t.Errorf("vendor file missing or wrong kind: present=%v kind=%v", ok, kind)
	}
}

// TestScanCustomExcludes verifies configured exclusions extend the
// built-in set.
func TestScanCustomExcludes(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opts := DefaultOptions()
	opts.ExcludeDirs = []string{"scratch"}

	result, err := Scan(dir, opts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Tree.Children) != 0 {
		t.Errorf("got %d children, want 0 (scratch excluded)", len(result.Tree.Children))
	}
}

// TestScanFileMetadata verifies size and modification time are captured
// from the filesystem.
func TestScanFileMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("12345"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mod := time.Date(2022, time.June, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result, err := Scan(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Tree.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(result.Tree.Children))
	}

	file := result.Tree.Children[0]
	if file.SizeBytes != 5 {
		t.Errorf("SizeBytes = %d, want 5", file.SizeBytes)
	}
	if !file.ModifiedAt.Equal(mod) {
		t.Errorf("ModifiedAt = %v, want %v", file.ModifiedAt, mod)
	}
	if file.Path != path {
		t.Errorf("Path = %q, want %q", file.Path, path)
	}
}

// TestScanRootFailures verifies missing roots and non-directory roots
// return errors instead of fabricated trees.
func TestScanRootFailures(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing"), DefaultOptions()); err == nil {
		t.Errorf("Scan(missing) error = nil, want error")
	}

	filePath := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, filePath)
	if _, err := Scan(filePath, DefaultOptions()); err == nil {
		t.Errorf("Scan(file) error = nil, want error")
	}
}

// TestScanUnreadableRoot verifies a root that cannot be opened fails the
// scan rather than returning an empty tree.
func TestScanUnreadableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(locked, "inside.txt"))
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	if _, err := Scan(locked, DefaultOptions()); err == nil {
		t.Errorf("Scan(unreadable) error = nil, want error")
	}
}

// TestScanRootTag verifies the root carries the originating OS and its
// own base name.
func TestScanRootTag(t *testing.T) {
	dir := t.TempDir()

	result, err := Scan(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if result.Tree.Name != filepath.Base(dir) {
		t.Errorf("root name = %q, want %q", result.Tree.Name, filepath.Base(dir))
	}
	if result.Tree.OS == "" {
		t.Errorf("root OS tag is empty")
	}
}
