package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notenodes/internal/forest"
)

var (
	checkJSON    bool
	checkSubtree string
	checkTopN    int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check tree integrity (dangling parents, cycles) and report its shape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		nodes, err := d.AllNodes()
		if err != nil {
			return fmt.Errorf("loading nodes: %w", err)
		}
		snap := forest.FromNodes(nodes)

		if checkSubtree != "" {
			node, err := ResolveNode(d, translator(d), checkSubtree)
			if err != nil {
				return err
			}
			snap = snap.FilterToSubtree(node.ID)
		}

		report := forest.Check(snap, checkTopN)

		if checkJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printReport(cmd.OutOrStdout(), report, snap)
		}

		if !report.Healthy() {
			return fmt.Errorf("integrity check failed: %d dangling, %d in cycles", report.DanglingCount, report.CycleCount)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
	checkCmd.Flags().StringVar(&checkSubtree, "subtree", "", "Scope the check to this node and its descendants")
	checkCmd.Flags().IntVar(&checkTopN, "top-n", 10, "Number of items to list per section")
	rootCmd.AddCommand(checkCmd)
}

func printReport(w io.Writer, report *forest.Report, snap *forest.Snapshot) {
	status := "OK"
	if !report.Healthy() {
		status = "PROBLEMS FOUND"
	}
	fmt.Fprintf(w, "\n  Tree integrity: %s\n\n", status)

	fmt.Fprintln(w, "  SHAPE")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	fmt.Fprintf(w, "  Nodes: %d  Roots: %d  Leaves: %d  Collapsed: %d\n",
		report.TotalNodes, report.RootCount, report.LeafCount, report.CollapsedCount)
	fmt.Fprintf(w, "  Trees: %d  Largest: %d  Max depth: %d  Content: %s\n",
		report.NumTrees, report.LargestTree, report.MaxDepth, humanize.Bytes(uint64(report.ContentBytes)))

	fmt.Fprintln(w, "\n  Depth distribution:")
	for _, b := range report.DepthHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Fprintf(w, "    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(report.Widest) > 0 {
		fmt.Fprintln(w, "\n  Widest nodes:")
		for _, n := range report.Widest {
			fmt.Fprintf(w, "    %d children=%d  %s\n", n.ID, n.Children, truncTitle(n.Title, 40))
		}
	}

	if report.Healthy() {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "\n  INTEGRITY")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	if report.DanglingCount > 0 {
		fmt.Fprintf(w, "  %d node(s) point at a missing parent:\n", report.DanglingCount)
		for _, id := range report.DanglingIDs {
			n := snap.Nodes[id]
			fmt.Fprintf(w, "    - %d -> %d  %s\n", id, *n.ParentID, truncTitle(n.Title, 40))
		}
	}
	if report.CycleCount > 0 {
		fmt.Fprintf(w, "  %d node(s) never reach a root (parent cycle):\n", report.CycleCount)
		for _, id := range report.CycleIDs {
			fmt.Fprintf(w, "    - %d  %s\n", id, truncTitle(snap.Nodes[id].Title, 40))
		}
	}
	if len(report.DanglingIDs) < report.DanglingCount || len(report.CycleIDs) < report.CycleCount {
		fmt.Fprintln(w, "    ... (use --top-n to list more)")
	}
	fmt.Fprintln(w)
}
