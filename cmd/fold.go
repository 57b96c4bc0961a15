package cmd

import (
	"github.com/spf13/cobra"
)

func foldCommand(use, short string, collapsed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <node>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := OpenDatabase()
			if err != nil {
				return err
			}
			defer d.Close()
			tr := translator(d)

			for _, ref := range args {
				node, err := ResolveNode(d, tr, ref)
				if err != nil {
					return err
				}
				if err := d.SetCollapsed(node.ID, collapsed); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(
		foldCommand("collapse", "Collapse nodes in tree views", true),
		foldCommand("expand", "Expand nodes in tree views", false),
	)
}
