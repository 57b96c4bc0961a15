package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notenodes/internal/db"
	"notenodes/internal/render"
)

var (
	showRaw  bool
	showHTML bool

	renderOut string
)

var showCmd = &cobra.Command{
	Use:   "show <node>",
	Short: "Show a node's path, children and rendered Markdown content",
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
		out := cmd.OutOrStdout()

		if showHTML {
			html, err := render.NewHTML(cfg.Render.CodeStyle).Render(node.Content)
			if err != nil {
				return err
			}
			fmt.Fprint(out, html)
			return nil
		}

		ancestors, err := d.Ancestors(node.ID)
		if err != nil {
			return err
		}
		children, err := d.GetChildren(&node.ID)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, breadcrumb(node, ancestors))
		fmt.Fprintf(out, "id=%d  children=%d  size=%s", node.ID, len(children), humanize.Bytes(uint64(len(node.Content))))
		if node.Collapsed {
			fmt.Fprint(out, "  collapsed")
		}
		fmt.Fprint(out, "\n\n")

		if showRaw {
			fmt.Fprintln(out, node.Content)
			return nil
		}
		term, err := render.NewTerminal(cfg.Render.TermStyle, cfg.Render.WordWrap)
		if err != nil {
			return err
		}
		text, err := term.Render(node.Content)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <node>",
	Short: "Render a node as a standalone HTML page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		node, err := ResolveNode(d, translator(d), args[0])
		if err != nil {
			return err
		}
		page, err := render.NewHTML(cfg.Render.CodeStyle).Page(node.Title, node.Content)
		if err != nil {
			return err
		}

		if renderOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), page)
			return nil
		}
		if err := os.WriteFile(renderOut, []byte(page), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", renderOut, err)
		}
		return nil
	},
}

// breadcrumb formats "Root / Parent / Node" from an ancestor chain, nearest first.
func breadcrumb(node *db.Node, ancestors []db.Node) string {
	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Title)
	}
	parts = append(parts, node.Title)
	return strings.Join(parts, " / ")
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the Markdown source")
	showCmd.Flags().BoolVar(&showHTML, "html", false, "Print the content as an HTML fragment")
	showCmd.MarkFlagsMutuallyExclusive("raw", "html")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write the page to a file instead of stdout")
	rootCmd.AddCommand(showCmd, renderCmd)
}
