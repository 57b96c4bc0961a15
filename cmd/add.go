package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notenodes/internal/db"
)

var (
	addParent    string
	addContent   string
	addFile      string
	addCollapsed bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a node, at the root level or under --parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		tr := translator(d)

		title := strings.TrimSpace(args[0])
		if title == "" {
			return &userError{msg: tr.T("empty_title", ""), err: db.ErrEmptyTitle}
		}

		parent, err := parseParent(d, tr, addParent)
		if err != nil {
			return err
		}
		content, err := readContent(cmd, addContent, addFile)
		if err != nil {
			return err
		}

		id, err := d.CreateNode(title, db.CreateNodeOpts{
			ParentID:  parent,
			Content:   content,
			Collapsed: addCollapsed,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tr.T("created", id))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addParent, "parent", "p", "", "Parent node (id or title)")
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Markdown content")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read content from file (- for stdin)")
	addCmd.Flags().BoolVar(&addCollapsed, "collapsed", false, "Create the node collapsed")
	addCmd.MarkFlagsMutuallyExclusive("content", "file")
	rootCmd.AddCommand(addCmd)
}
