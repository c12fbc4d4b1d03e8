// Package tree defines the directory tree model shared by scanning,
// structure synthesis and plan execution.
//
// A tree is built from Node values tagged with a Kind. Files carry size
// and modification time; folders carry children; ignored folders mark
// directories that are present but were deliberately not traversed
// (depth bound reached or non-recursive scan). Every consumer switches
// exhaustively on Kind so a new kind cannot pass through unnoticed.
package tree

import (
	"runtime"
	"sort"
	"strings"
	"time"
)

// Kind discriminates the node variants in a tree.
type Kind int

const (
	// KindFile is a regular file with size and modification time.
	KindFile Kind = iota

	// KindFolder is a directory whose children were enumerated.
	KindFolder

	// KindIgnoredFolder is a directory that is present in the tree but
	// whose children were never enumerated.
	KindIgnoredFolder
)

// String returns the wire name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	case KindIgnoredFolder:
		return "ignored_folder"
	default:
		return "unknown"
	}
}

// IsFolder reports whether the kind represents a directory variant.
func (k Kind) IsFolder() bool {
	switch k {
	case KindFolder, KindIgnoredFolder:
		return true
	case KindFile:
		return false
	default:
		return false
	}
}

// Node is a single entry in a scanned or proposed tree.
//
// Name is the base name of the entry. Path is the absolute path for
// scanned trees; proposed trees leave it empty because their folders do
// not exist yet. OS is set on the root node only and records the system
// the scan ran on. SizeBytes and ModifiedAt are meaningful for files; a
// zero ModifiedAt means the timestamp is unknown. OriginalPath is set on
// file nodes inside proposed trees and points back at the source file.
type Node struct {
	Name         string
	Path         string
	Kind         Kind
	OS           string
	SizeBytes    int64
	ModifiedAt   time.Time
	OriginalPath string
	Children     []*Node
}

// AddChild appends a child node. It does not maintain sort order;
// call SortChildren after the last insert.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// SortChildren orders a sibling slice: folders before files, then
// case-insensitive lexicographic by name. Ties on the folded name are
// broken by raw byte order so the ordering is total and deterministic.
func SortChildren(children []*Node) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.Kind.IsFolder() != b.Kind.IsFolder() {
			return a.Kind.IsFolder()
		}
		af, bf := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if af != bf {
			return af < bf
		}
		return a.Name < b.Name
	})
}

// SortRecursive applies SortChildren to every folder in the tree.
func (n *Node) SortRecursive() {
	SortChildren(n.Children)
	for _, child := range n.Children {
		switch child.Kind {
		case KindFolder:
			child.SortRecursive()
		case KindFile, KindIgnoredFolder:
			// Leaves by definition.
		}
	}
}

// Flatten returns all file nodes in pre-order, ignoring folder
// boundaries. Ignored folders contribute nothing because their contents
// were never enumerated.
func Flatten(root *Node) []*Node {
	var files []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case KindFile:
			files = append(files, n)
		case KindFolder:
			for _, child := range n.Children {
				walk(child)
			}
		case KindIgnoredFolder:
			// Not traversed, no contents to flatten.
		}
	}
	walk(root)
	return files
}

// CurrentOS maps the running platform to the wire OS names.
func CurrentOS() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	default:
		return "unknown"
	}
}
