package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/store"
)

// PrintMap prints a map as an indented tree with colors:
//
//	Climate Change (spring, 7 nodes)
//	├── Causes
//	│   └── Fossil Fuels
//	└── Effects
func PrintMap(w io.Writer, id string, m *model.Map) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	if id != "" {
		faint.Fprintf(w, "%s ", id)
	}
	cyan.Fprint(w, m.CenterNode.Label)
	fmt.Fprintf(w, " (%s, %d nodes)\n", m.Layout, len(m.Nodes))

	mains := m.Children(m.CenterNode.ID)
	if len(mains) == 0 {
		faint.Fprintln(w, "  no concepts found")
		return
	}

	for i, main := range mains {
		lastMain := i == len(mains)-1
		branch, indent := "├── ", "│   "
		if lastMain {
			branch, indent = "└── ", "    "
		}
		fmt.Fprint(w, branch)
		green.Fprintln(w, main.Label)

		subs := m.Children(main.ID)
		for j, sub := range subs {
			leaf := "├── "
			if j == len(subs)-1 {
				leaf = "└── "
			}
			fmt.Fprint(w, indent+leaf)
			fmt.Fprintln(w, sub.Label)
		}
	}

	bold.Fprintf(w, "%d main concepts, %d edges\n", len(mains), len(m.Edges))
}

// PrintSummaries prints one line per stored map
func PrintSummaries(w io.Writer, maps []store.Summary) {
	yellow := color.New(color.FgYellow)
	for _, s := range maps {
		yellow.Fprintf(w, "%-14s", s.ID)
		fmt.Fprintf(w, " %-12s %3d nodes  %s\n", s.Layout, s.NodeCount, s.Title)
	}
}
