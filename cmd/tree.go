package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"notenodes/internal/forest"
)

var (
	treeAll  bool
	treeJSON bool
)

var treeCmd = &cobra.Command{
	Use:     "tree [node]",
	Aliases: []string{"ls"},
	Short:   "Print the note tree, or the subtree below a node",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		tr := translator(d)

		var from *int64
		if len(args) == 1 {
			node, err := ResolveNode(d, tr, args[0])
			if err != nil {
				return err
			}
			from = &node.ID
		}

		items, err := forest.LoadFrom(d, from)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if treeJSON {
			if items == nil {
				items = []*forest.Item{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		if len(items) == 0 {
			fmt.Fprintln(out, tr.T("empty_tree"))
			return nil
		}
		return forest.Fprint(out, items, treeAll)
	},
}

func init() {
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "Show children of collapsed nodes")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(treeCmd)
}
