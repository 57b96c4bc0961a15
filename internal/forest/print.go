package forest

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the mirror as an indented outline. Children of collapsed
// nodes are hidden unless all is set; a hidden subtree shows its size.
func Fprint(w io.Writer, items []*Item, all bool) error {
	return Walk(items, func(it *Item, depth int) error {
		marker := "•"
		hidden := !all && it.Node.Collapsed && len(it.Children) > 0
		switch {
		case hidden:
			marker = "▸"
		case len(it.Children) > 0:
			marker = "▾"
		}

		line := fmt.Sprintf("%s%s %d %s", strings.Repeat("  ", depth), marker, it.Node.ID, it.Node.Title)
		if hidden {
			line += fmt.Sprintf(" (+%d)", countBelow(it))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if hidden {
			return SkipChildren
		}
		return nil
	})
}

// countBelow returns the number of descendants of it.
func countBelow(it *Item) int {
	n := 0
	_ = Walk(it.Children, func(*Item, int) error {
		n++
		return nil
	})
	return n
}
