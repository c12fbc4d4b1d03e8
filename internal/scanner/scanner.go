// Package scanner builds ordered directory trees with bounded depth.
//
// Traversal runs on fastwalk, which walks concurrently; the scanner
// collects entries under a lock and assembles the tree in a
// deterministic pass afterwards, so the same directory always yields
// the same tree regardless of walk scheduling. Scanning never mutates
// the filesystem.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/harrison/tidydir/internal/tree"
)

// DefaultMaxDepth is the depth bound applied when nothing is configured.
const DefaultMaxDepth = 3

// defaultExcludes are directory names never traversed or listed:
// version control metadata and dependency caches.
var defaultExcludes = []string{
	".git", ".hg", ".svn", "node_modules", "vendor", "target", "build", "__pycache__", ".cache",
}

// Logger is the logging subset the scanner uses for skipped entries.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// nopLogger discards scan logging when no logger is attached.
type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogWarn(string)  {}

// Options control a single scan.
//
// MaxDepth bounds enumeration relative to the root: the root's children
// sit at depth 1, and directories at the bound are listed as ignored
// folders without enumerating their contents. MaxDepth 0 lists nothing
// below the root. When Recursive is false only the root's immediate
// children are listed and every sub-folder becomes an ignored folder.
type Options struct {
	MaxDepth    int
	Recursive   bool
	ExcludeDirs []string
	Log         Logger
}

// DefaultOptions returns the options applied by the CLI when nothing is
// configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:  DefaultMaxDepth,
		Recursive: true,
	}
}

// Result carries the scanned tree plus traversal telemetry.
type Result struct {
	Tree *tree.Node

	// SkippedEntries counts entries dropped because their metadata
	// could not be read. Skips are logged, never fatal.
	SkippedEntries int
}

// visit is one entry collected during the concurrent walk.
type visit struct {
	path string
	name string
	kind tree.Kind
	size int64
	mod  time.Time
}

// Scan enumerates root into an ordered tree.
//
// The root itself failing to stat, not being a directory, or failing to
// open returns an error; individual entries failing to stat are logged,
// counted and skipped. Children are ordered folders first, then
// case-insensitive by name.
func Scan(root string, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	rootNode := &tree.Node{
		Name: filepath.Base(absRoot),
		Path: absRoot,
		Kind: tree.KindFolder,
		OS:   tree.CurrentOS(),
	}
	result := &Result{Tree: rootNode}

	if opts.MaxDepth == 0 {
		return result, nil
	}

	excludes := make(map[string]bool, len(defaultExcludes)+len(opts.ExcludeDirs))
	for _, name := range defaultExcludes {
		excludes[name] = true
	}
	for _, name := range opts.ExcludeDirs {
		excludes[name] = true
	}

	var (
		mu      sync.Mutex
		visits  []visit
		skipped int
	)

	// Follow is off so symlink cycles cannot trap the walk.
	conf := &fastwalk.Config{Follow: false}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				// Unreadable root is a scan failure, not a skip.
				return err
			}
			log.LogDebug(fmt.Sprintf("skipping %s: %v", path, err))
			mu.Lock()
			skipped++
			mu.Unlock()
			return nil
		}

		if path == absRoot {
			return nil
		}

		name := d.Name()

		// Hidden entries are excluded as content and as descent targets.
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if excludes[name] {
				return fastwalk.SkipDir
			}

			depth := fastwalk.DirEntryDepth(d)
			if depth > opts.MaxDepth {
				return fastwalk.SkipDir
			}
			if depth == opts.MaxDepth || !opts.Recursive {
				// Present but not traversed.
				mu.Lock()
				visits = append(visits, visit{path: path, name: name, kind: tree.KindIgnoredFolder})
				mu.Unlock()
				return fastwalk.SkipDir
			}

			mu.Lock()
			visits = append(visits, visit{path: path, name: name, kind: tree.KindFolder})
			mu.Unlock()
			return nil
		}

		if depth := fastwalk.DirEntryDepth(d); depth > opts.MaxDepth {
			return nil
		}

		info, err := fastwalk.StatDirEntry(path, d)
		if err != nil {
			// Lstat fallback for broken symlinks.
			info, err = os.Lstat(path)
			if err != nil {
				log.LogDebug(fmt.Sprintf("skipping %s: stat: %v", path, err))
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
		}

		// Devices, sockets, fifos and unresolved symlinks are not
		// organizable files.
		if !info.Mode().IsRegular() {
			return nil
		}

		mu.Lock()
		visits = append(visits, visit{
			path: path,
			name: name,
			kind: tree.KindFile,
			size: info.Size(),
			mod:  info.ModTime(),
		})
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", absRoot, walkErr)
	}

	result.SkippedEntries = skipped
	if skipped > 0 {
		log.LogWarn(fmt.Sprintf("scan of %s skipped %d unreadable entries", absRoot, skipped))
	}

	assemble(rootNode, visits)
	rootNode.SortRecursive()
	return result, nil
}

// assemble attaches collected visits to their parent folders. Visits
// arrive in walk order, which is nondeterministic; sorting by path first
// guarantees parents are created before their children are attached.
func assemble(root *tree.Node, visits []visit) {
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].path < visits[j].path
	})

	parents := map[string]*tree.Node{root.Path: root}
	for _, v := range visits {
		parent, ok := parents[filepath.Dir(v.path)]
		if !ok {
			// Parent was excluded or out of bounds; drop the orphan.
			continue
		}

		node := &tree.Node{
			Name: v.name,
			Path: v.path,
			Kind: v.kind,
		}
		switch v.kind {
		case tree.KindFile:
			node.SizeBytes = v.size
			node.ModifiedAt = v.mod
		case tree.KindFolder:
			parents[v.path] = node
		case tree.KindIgnoredFolder:
			// Listed without children; never a parent.
		}
		parent.AddChild(node)
	}
}
