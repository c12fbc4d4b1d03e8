package tree

import (
	"encoding/json"
	"time"
)

// jsonNode is the wire shape consumed by UI clients. Folders always
// carry a children array (empty, not null); files and ignored folders
// omit it. A zero modification time is omitted entirely rather than
// encoded as the zero RFC 3339 value.
//
// Children is interface{} so that an empty folder still serializes as
// "children": [] while non-folders drop the key (omitempty elides only
// nil interfaces, not empty slices held by one).
type jsonNode struct {
	Name         string      `json:"name"`
	Path         string      `json:"path,omitempty"`
	Type         string      `json:"type"`
	OS           string      `json:"os,omitempty"`
	Size         int64       `json:"size,omitempty"`
	Modified     string      `json:"modified,omitempty"`
	OriginalPath string      `json:"originalPath,omitempty"`
	Children     interface{} `json:"children,omitempty"`
}

// MarshalJSON encodes the node in the UI wire shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{
		Name:         n.Name,
		Path:         n.Path,
		Type:         n.Kind.String(),
		OS:           n.OS,
		OriginalPath: n.OriginalPath,
	}

	switch n.Kind {
	case KindFile:
		out.Size = n.SizeBytes
		if !n.ModifiedAt.IsZero() {
			out.Modified = n.ModifiedAt.Format(time.RFC3339)
		}
	case KindFolder:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = children
	case KindIgnoredFolder:
		// No children array: nothing was enumerated.
	}

	return json.Marshal(out)
}
