// Package synthesize builds proposed reorganization trees.
//
// A proposal groups every file from a scanned tree into category
// folders, ignoring where the files currently live. Proposals are pure
// values: building one never touches the filesystem, and the same
// scanned tree with the same policy always produces an identical
// proposal, which is what lets execution re-derive the structure it
// applies instead of trusting a client-held copy.
package synthesize

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/tree"
)

// Summary reports what happened to the scanned files while building a
// proposal.
type Summary struct {
	// TotalFiles is every file found in the scanned tree.
	TotalFiles int

	// PlacedFiles is how many landed in a category folder.
	PlacedFiles int

	// SkippedFiles counts files the date policy excluded for lack of a
	// modification time. Always zero for extension policies.
	SkippedFiles int

	// RenamedFiles counts files given a collision suffix because
	// another file with the same name landed in the same category.
	RenamedFiles int
}

// group is one category folder being accumulated.
type group struct {
	path  classify.CategoryPath
	files []*tree.Node
}

// Build flattens the scanned tree, classifies every file and assembles
// the proposed tree. The proposal's root has an empty name; category
// folders appear in canonical order (rule table order for extension
// policies, chronological for the date policy) and empty categories are
// pruned by construction. File nodes carry OriginalPath back-references
// to their sources.
func Build(scanned *tree.Node, policy classify.Policy, classifier *classify.Classifier) (*tree.Node, *Summary) {
	summary := &Summary{}
	files := tree.Flatten(scanned)
	summary.TotalFiles = len(files)

	groups := make(map[string]*group)
	var order []string

	for _, file := range files {
		path, ok := classifier.Classify(file, policy)
		if !ok {
			summary.SkippedFiles++
			continue
		}

		key := path.String()
		g, exists := groups[key]
		if !exists {
			g = &group{path: path}
			groups[key] = g
			order = append(order, key)
		}

		g.files = append(g.files, &tree.Node{
			Name:         file.Name,
			Kind:         tree.KindFile,
			SizeBytes:    file.SizeBytes,
			ModifiedAt:   file.ModifiedAt,
			OriginalPath: file.Path,
		})
		summary.PlacedFiles++
	}

	root := &tree.Node{Kind: tree.KindFolder, OS: tree.CurrentOS()}

	switch policy {
	case classify.PolicyContent, classify.PolicyType:
		for _, category := range classifier.CanonicalOrder(policy) {
			g, exists := groups[category]
			if !exists {
				continue
			}
			folder := &tree.Node{Name: category, Kind: tree.KindFolder}
			folder.Children = finishGroup(g, summary)
			root.AddChild(folder)
		}
	case classify.PolicyDate:
		attachDateGroups(root, groups, order, summary)
	}

	return root, summary
}

// finishGroup orders a category's files and applies collision suffixes.
// Files sort case-insensitively; a later file whose name is already
// taken becomes name_copyN.ext, counting up until the name is free.
// Renaming happens here, in the proposal, so preview and execution
// always agree on destination names.
func finishGroup(g *group, summary *Summary) []*tree.Node {
	tree.SortChildren(g.files)

	taken := make(map[string]bool, len(g.files))
	for _, file := range g.files {
		if !taken[file.Name] {
			taken[file.Name] = true
			continue
		}

		ext := filepath.Ext(file.Name)
		stem := strings.TrimSuffix(file.Name, ext)
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s_copy%d%s", stem, n, ext)
			if !taken[candidate] {
				file.Name = candidate
				taken[candidate] = true
				break
			}
		}
		summary.RenamedFiles++
	}

	return g.files
}

// attachDateGroups nests year folders, then month folders, in
// chronological order. Group membership guarantees every file in a
// group shares a year and month, so any member's timestamp orders the
// group.
func attachDateGroups(root *tree.Node, groups map[string]*group, order []string, summary *Summary) {
	keys := make([]string, 0, len(order))
	keys = append(keys, order...)

	// Chronological, not lexicographic: compare the timestamps behind
	// the keys rather than the folder names.
	sort.SliceStable(keys, func(i, j int) bool {
		return groupTime(groups[keys[i]]).Before(groupTime(groups[keys[j]]))
	})

	years := make(map[string]*tree.Node)
	for _, key := range keys {
		g := groups[key]
		yearName, monthName := g.path[0], g.path[1]

		yearNode, exists := years[yearName]
		if !exists {
			yearNode = &tree.Node{Name: yearName, Kind: tree.KindFolder}
			years[yearName] = yearNode
			root.AddChild(yearNode)
		}

		monthNode := &tree.Node{Name: monthName, Kind: tree.KindFolder}
		monthNode.Children = finishGroup(g, summary)
		yearNode.AddChild(monthNode)
	}
}

// groupTime returns the timestamp that orders a date group.
func groupTime(g *group) time.Time {
	if len(g.files) == 0 {
		return time.Time{}
	}
	return g.files[0].ModifiedAt
}
