package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notenodes/internal/i18n"
)

var initLang string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the notes database if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		if initLang != "" {
			if !i18n.Supported(initLang) {
				return fmt.Errorf("unsupported language %q (available: %v)", initLang, i18n.Languages())
			}
			if err := d.SetSetting(i18n.SettingKey, initLang); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", d.Path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initLang, "lang", "", "Interface language to store (en, fr, es, ko)")
	rootCmd.AddCommand(initCmd)
}
