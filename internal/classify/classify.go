// Package classify maps files to category paths using extension rule
// tables or modification dates.
//
// Classification is a pure function of a file's name (its extension)
// and, for the date policy, its modification time. Nothing here reads
// the filesystem, so classifying the same file twice always yields the
// same category.
package classify

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/harrison/tidydir/internal/tree"
)

// Policy selects how files are grouped into categories.
type Policy string

const (
	// PolicyContent groups files into five broad content groups.
	PolicyContent Policy = "content"

	// PolicyType groups like PolicyContent with additional office
	// document groups split out.
	PolicyType Policy = "type"

	// PolicyDate groups files by modification year and month.
	PolicyDate Policy = "date"
)

// CategoryOther is the fallback category for files no rule claims.
const CategoryOther = "Other"

// ParsePolicy validates a mode string from config or the CLI.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyContent:
		return PolicyContent, nil
	case PolicyType:
		return PolicyType, nil
	case PolicyDate:
		return PolicyDate, nil
	default:
		return "", fmt.Errorf("invalid mode %q, must be one of: content, type, date", s)
	}
}

// CategoryPath is the folder path a file belongs under, one segment per
// nesting level. Extension policies produce a single segment; the date
// policy produces year then month.
type CategoryPath []string

// String joins the path segments with "/" for display.
func (p CategoryPath) String() string {
	return strings.Join(p, "/")
}

// Rule claims a set of extensions for a category. Higher priority rules
// are consulted first; the first match wins.
type Rule struct {
	Category   string
	Extensions []string
	Priority   int
}

// contentRules is the five-group table shared by both extension
// policies. Order doubles as the canonical display order.
var contentRules = []Rule{
	{Category: "Documents", Extensions: []string{"pdf", "doc", "docx", "txt", "md", "rtf"}, Priority: 100},
	{Category: "Images", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "svg"}, Priority: 90},
	{Category: "Videos", Extensions: []string{"mp4", "avi", "mov", "wmv", "flv", "mkv", "webm"}, Priority: 80},
	{Category: "Audio", Extensions: []string{"mp3", "wav", "flac", "aac", "ogg", "wma"}, Priority: 70},
	{Category: "Archives", Extensions: []string{"zip", "rar", "7z", "tar", "gz", "bz2"}, Priority: 60},
}

// typeRules extends the content table with office document groups.
var typeRules = []Rule{
	{Category: "Spreadsheets", Extensions: []string{"xls", "xlsx", "csv"}, Priority: 55},
	{Category: "Presentations", Extensions: []string{"ppt", "pptx"}, Priority: 50},
}

// compiledRule pairs a rule with its extension lookup set.
type compiledRule struct {
	rule Rule
	exts map[string]bool
}

// Classifier resolves files to category paths under a fixed rule set.
type Classifier struct {
	content []compiledRule
	typed   []compiledRule
}

// New creates a Classifier with the default rule tables.
func New() *Classifier {
	return NewWithRules(nil)
}

// NewWithRules creates a Classifier whose type-policy table is extended
// by custom rules. Custom rules with higher priority shadow defaults;
// the content table is fixed. Rules are matched in descending priority,
// table order breaking ties.
func NewWithRules(custom []Rule) *Classifier {
	typed := make([]Rule, 0, len(contentRules)+len(typeRules)+len(custom))
	typed = append(typed, contentRules...)
	typed = append(typed, typeRules...)
	typed = append(typed, custom...)
	sort.SliceStable(typed, func(i, j int) bool {
		return typed[i].Priority > typed[j].Priority
	})

	return &Classifier{
		content: compileRules(contentRules),
		typed:   compileRules(typed),
	}
}

// compileRules builds lookup sets with extensions lowercased.
func compileRules(rules []Rule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		exts := make(map[string]bool, len(r.Extensions))
		for _, ext := range r.Extensions {
			exts[strings.ToLower(ext)] = true
		}
		compiled = append(compiled, compiledRule{rule: r, exts: exts})
	}
	return compiled
}

// Classify returns the category path for a file under the given policy.
// The boolean is false only when the date policy cannot place a file
// because its modification time is unknown; such files are excluded
// from proposals and the exclusion is surfaced by callers.
func (c *Classifier) Classify(file *tree.Node, policy Policy) (CategoryPath, bool) {
	switch policy {
	case PolicyDate:
		if file.ModifiedAt.IsZero() {
			return nil, false
		}
		return CategoryPath{
			strconv.Itoa(file.ModifiedAt.Year()),
			file.ModifiedAt.Month().String(),
		}, true
	case PolicyContent:
		return CategoryPath{matchExtension(c.content, file.Name)}, true
	case PolicyType:
		return CategoryPath{matchExtension(c.typed, file.Name)}, true
	default:
		// Unknown policies fall back to the catch-all rather than
		// inventing a grouping.
		return CategoryPath{CategoryOther}, true
	}
}

// matchExtension finds the first rule claiming the file's extension.
func matchExtension(rules []compiledRule, name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return CategoryOther
	}
	for _, cr := range rules {
		if cr.exts[ext] {
			return cr.rule.Category
		}
	}
	return CategoryOther
}

// CanonicalOrder returns category names in display order for the given
// policy: rule table order with the fallback category last. The date
// policy has no fixed table; its folders order chronologically instead.
func (c *Classifier) CanonicalOrder(policy Policy) []string {
	var compiled []compiledRule
	switch policy {
	case PolicyContent:
		compiled = c.content
	case PolicyType:
		compiled = c.typed
	case PolicyDate:
		return nil
	default:
		return nil
	}

	seen := make(map[string]bool, len(compiled))
	order := make([]string, 0, len(compiled)+1)
	for _, cr := range compiled {
		if !seen[cr.rule.Category] {
			seen[cr.rule.Category] = true
			order = append(order, cr.rule.Category)
		}
	}
	order = append(order, CategoryOther)
	return order
}

// ValidateCategory checks that a category name is usable as a single
// path segment. Custom rules from config pass through this before they
// can steer files anywhere.
func ValidateCategory(name string) error {
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid category name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("category name %q must not contain path separators", name)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("category name %q must not be absolute", name)
	}
	return nil
}
