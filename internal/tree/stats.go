package tree

// Stats summarizes a tree for display footers and reports.
type Stats struct {
	Files          int
	Folders        int
	IgnoredFolders int
	TotalBytes     int64
}

// CollectStats walks the tree and tallies entries by kind. The root
// folder itself is not counted.
func CollectStats(root *Node) Stats {
	var stats Stats
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			switch child.Kind {
			case KindFile:
				stats.Files++
				stats.TotalBytes += child.SizeBytes
			case KindFolder:
				stats.Folders++
				walk(child)
			case KindIgnoredFolder:
				stats.IgnoredFolders++
			}
		}
	}
	walk(root)
	return stats
}
