package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/tidydir/internal/tree"
)

// renderTree writes node's children as a box-drawing tree. Folders come
// ahead of files already; the renderer only draws what it is given.
func renderTree(w io.Writer, node *tree.Node, useColor bool) {
	if node == nil {
		return
	}

	folderColor := color.New(color.FgBlue, color.Bold)
	dimColor := color.New(color.FgHiBlack)

	var render func(children []*tree.Node, prefix string)
	render = func(children []*tree.Node, prefix string) {
		for i, child := range children {
			connector := "├── "
			childPrefix := prefix + "│   "
			if i == len(children)-1 {
				connector = "└── "
				childPrefix = prefix + "    "
			}

			switch child.Kind {
			case tree.KindFolder:
				label := child.Name
				if useColor {
					label = folderColor.Sprint(child.Name)
				}
				fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label)
				render(child.Children, childPrefix)
			case tree.KindIgnoredFolder:
				label := child.Name + " (not scanned)"
				if useColor {
					label = dimColor.Sprint(label)
				}
				fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label)
			default:
				line := child.Name
				if child.SizeBytes > 0 {
					sizeText := formatBytes(child.SizeBytes)
					if useColor {
						sizeText = dimColor.Sprint(sizeText)
					}
					line = fmt.Sprintf("%s (%s)", child.Name, sizeText)
				}
				fmt.Fprintf(w, "%s%s%s\n", prefix, connector, line)
			}
		}
	}

	render(node.Children, "")
}
