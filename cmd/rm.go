package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"notenodes/internal/shell"
)

var rmYes bool

var rmCmd = &cobra.Command{
	Use:     "rm <node>",
	Aliases: []string{"delete"},
	Short:   "Delete a node and all of its descendants",
	Args:    cobra.ExactArgs(1),
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

		if !rmYes {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s [%d %s] (%s/N) ", tr.T("delete_confirm"), node.ID, node.Title, tr.T("yes"))
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if !shell.Confirmed(answer, tr.T("yes")) {
				return nil
			}
		}

		removed, err := d.DeleteNode(node.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tr.T("deleted", removed))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(rmCmd)
}
