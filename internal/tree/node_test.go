package tree

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestSortChildrenFoldersFirst verifies folders sort ahead of files and
// names compare case-insensitively.
func TestSortChildrenFoldersFirst(t *testing.T) {
	children := []*Node{
		{Name: "b.txt", Kind: KindFile},
		{Name: "A", Kind: KindFolder},
		{Name: "a.txt", Kind: KindFile},
	}

	SortChildren(children)

	got := []string{children[0].Name, children[1].Name, children[2].Name}
	want := []string{"A", "a.txt", "b.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("children[%d] = %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}

// TestSortChildrenIgnoredFoldersGroupWithFolders verifies the
// not-traversed marker still sorts in the folder block.
func TestSortChildrenIgnoredFoldersGroupWithFolders(t *testing.T) {
	children := []*Node{
		{Name: "zz.txt", Kind: KindFile},
		{Name: "sub", Kind: KindIgnoredFolder},
		{Name: "docs", Kind: KindFolder},
	}

	SortChildren(children)

	if children[0].Name != "docs" || children[1].Name != "sub" || children[2].Name != "zz.txt" {
		t.Errorf("order = [%s %s %s], want [docs sub zz.txt]",
			children[0].Name, children[1].Name, children[2].Name)
	}
}

// TestSortChildrenDeterministicOnFoldTies verifies names equal after
// case folding still order deterministically.
func TestSortChildrenDeterministicOnFoldTies(t *testing.T) {
	children := []*Node{
		{Name: "readme.md", Kind: KindFile},
		{Name: "README.md", Kind: KindFile},
	}

	SortChildren(children)

	if children[0].Name != "README.md" {
		t.Errorf("first = %q, want %q", children[0].Name, "README.md")
	}
}

// TestFlattenPreOrder verifies files come out in pre-order regardless of
// nesting, and ignored folders contribute nothing.
func TestFlattenPreOrder(t *testing.T) {
	root := &Node{
		Name: "root",
		Kind: KindFolder,
		Children: []*Node{
			{
				Name: "docs",
				Kind: KindFolder,
				Children: []*Node{
					{Name: "notes.txt", Kind: KindFile},
				},
			},
			{Name: "skipped", Kind: KindIgnoredFolder},
			{Name: "a.pdf", Kind: KindFile},
			{Name: "b.png", Kind: KindFile},
		},
	}

	files := Flatten(root)

	want := []string{"notes.txt", "a.pdf", "b.png"}
	if len(files) != len(want) {
		t.Fatalf("Flatten returned %d files, want %d", len(files), len(want))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("files[%d] = %q, want %q", i, files[i].Name, name)
		}
	}
}

// TestCollectStats verifies tallies per kind and the byte total.
func TestCollectStats(t *testing.T) {
	root := &Node{
		Name: "root",
		Kind: KindFolder,
		Children: []*Node{
			{Name: "a.txt", Kind: KindFile, SizeBytes: 100},
			{
				Name: "sub",
				Kind: KindFolder,
				Children: []*Node{
					{Name: "b.txt", Kind: KindFile, SizeBytes: 50},
				},
			},
			{Name: "pkg", Kind: KindIgnoredFolder},
		},
	}

	stats := CollectStats(root)

	if stats.Files != 2 {
		t.Errorf("Files = %d, want 2", stats.Files)
	}
	if stats.Folders != 1 {
		t.Errorf("Folders = %d, want 1", stats.Folders)
	}
	if stats.IgnoredFolders != 1 {
		t.Errorf("IgnoredFolders = %d, want 1", stats.IgnoredFolders)
	}
	if stats.TotalBytes != 150 {
		t.Errorf("TotalBytes = %d, want 150", stats.TotalBytes)
	}
}

// TestKindString verifies the wire names for all kinds.
func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindFile, "file"},
		{KindFolder, "folder"},
		{KindIgnoredFolder, "ignored_folder"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestMarshalJSONEmptyFolder verifies empty folders serialize with an
// empty children array, not null and not a missing key.
func TestMarshalJSONEmptyFolder(t *testing.T) {
	node := &Node{Name: "empty", Kind: KindFolder, OS: "linux"}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	children, ok := decoded["children"].([]interface{})
	if !ok {
		t.Fatalf("children = %v (%T), want empty array", decoded["children"], decoded["children"])
	}
	if len(children) != 0 {
		t.Errorf("children length = %d, want 0", len(children))
	}
	if decoded["type"] != "folder" {
		t.Errorf("type = %v, want folder", decoded["type"])
	}
	if decoded["os"] != "linux" {
		t.Errorf("os = %v, want linux", decoded["os"])
	}
}

// TestMarshalJSONFile verifies files omit children, carry size, and drop
// a zero modification time.
func TestMarshalJSONFile(t *testing.T) {
	mod := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	withTime := &Node{Name: "a.pdf", Kind: KindFile, SizeBytes: 42, ModifiedAt: mod}
	withoutTime := &Node{Name: "b.pdf", Kind: KindFile}

	data, err := json.Marshal(withTime)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"file"`) {
		t.Errorf("output missing file type: %s", s)
	}
	if !strings.Contains(s, `"size":42`) {
		t.Errorf("output missing size: %s", s)
	}
	if !strings.Contains(s, `"modified":"2024-03-10T12:00:00Z"`) {
		t.Errorf("output missing modified: %s", s)
	}
	if strings.Contains(s, "children") {
		t.Errorf("file should not have children key: %s", s)
	}

	data, err = json.Marshal(withoutTime)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "modified") {
		t.Errorf("zero time should omit modified key: %s", data)
	}
}

// TestMarshalJSONIgnoredFolder verifies the not-traversed marker
// serializes with its own type and no children array.
func TestMarshalJSONIgnoredFolder(t *testing.T) {
	node := &Node{Name: "sub", Kind: KindIgnoredFolder}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"ignored_folder"`) {
		t.Errorf("output missing ignored_folder type: %s", s)
	}
	if strings.Contains(s, "children") {
		t.Errorf("ignored folder should not have children key: %s", s)
	}
}
