package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"notenodes/internal/db"
)

var (
	editTitle   string
	editContent string
	editFile    string
)

var editCmd = &cobra.Command{
	Use:   "edit <node>",
	Short: "Rename a node or replace its content; opens $EDITOR without flags",
	Args:  cobra.ExactArgs(1),
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

		var u db.NodeUpdate
		if cmd.Flags().Changed("title") {
			u.Title = &editTitle
		}
		if cmd.Flags().Changed("content") || editFile != "" {
			content, err := readContent(cmd, editContent, editFile)
			if err != nil {
				return err
			}
			u.Content = &content
		}
		if u.Empty() {
			content, err := editInEditor(node.Content)
			if err != nil {
				return err
			}
			if content == node.Content {
				return nil
			}
			u.Content = &content
		}

		if err := d.UpdateNode(node.ID, u); err != nil {
			if errors.Is(err, db.ErrEmptyTitle) {
				return &userError{msg: tr.T("empty_title", node.Title), err: err}
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tr.T("note_saved"))
		return nil
	},
}

// editInEditor writes content to a temp file, runs $EDITOR on it and
// returns the edited text.
func editInEditor(content string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	f, err := os.CreateTemp("", "notenodes-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	c := exec.Command(editor, f.Name())
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w", editor, err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return string(data), nil
}

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New Markdown content")
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "Read new content from file (- for stdin)")
	editCmd.MarkFlagsMutuallyExclusive("content", "file")
	rootCmd.AddCommand(editCmd)
}
