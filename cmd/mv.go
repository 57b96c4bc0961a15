package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"notenodes/internal/db"
)

var mvCmd = &cobra.Command{
	Use:   "mv <node> <new-parent|root>",
	Short: "Move a node (with its subtree) under another node or to the root level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		tr := translator(d)

		node, err := ResolveNode(d, tr, args[0])
		if err != nil {
			return err
		}
		parent, err := parseParent(d, tr, args[1])
		if err != nil {
			return err
		}

		if err := d.UpdateNodeParent(node.ID, parent); err != nil {
			if errors.Is(err, db.ErrCycle) || errors.Is(err, db.ErrParentNotFound) {
				return &userError{msg: tr.T("move_error", err), err: err}
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tr.T("moved", node.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mvCmd)
}
