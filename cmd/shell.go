package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notenodes/internal/config"
	"notenodes/internal/render"
	"notenodes/internal/shell"
)

var shellHistory string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session with a current node (ls, cd, add, rm, mv, show ...)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		var renderer shell.Renderer
		if term, err := render.NewTerminal(cfg.Render.TermStyle, cfg.Render.WordWrap); err != nil {
			logger.Warn("terminal renderer unavailable, showing raw Markdown", zap.Error(err))
		} else {
			renderer = term
		}
		sh := shell.New(d, cmd.OutOrStdout(), translator(d), renderer, logger.Named("shell"))

		history := shellHistory
		if history == "" {
			history = filepath.Join(filepath.Dir(config.DefaultPath()), "history")
			if err := os.MkdirAll(filepath.Dir(history), 0755); err != nil {
				logger.Warn("history disabled", zap.Error(err))
				history = ""
			}
		}
		return sh.Run(history)
	},
}

func init() {
	shellCmd.Flags().StringVar(&shellHistory, "history", "", "History file (default next to config.yaml)")
	rootCmd.AddCommand(shellCmd)
}
