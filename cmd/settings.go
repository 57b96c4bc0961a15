package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notenodes/internal/i18n"
)

var settingsDefault string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write persisted settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting, or --default when it was never written",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		v, err := d.GetSetting(args[0], settingsDefault)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting, replacing any previous value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == i18n.SettingKey && !i18n.Supported(args[1]) {
			return fmt.Errorf("unsupported language %q (available: %v)", args[1], i18n.Languages())
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		return d.SetSetting(args[0], args[1])
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		settings, err := d.AllSettings()
		if err != nil {
			return err
		}
		for _, s := range settings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", s.Key, s.Value)
		}
		return nil
	},
}

func init() {
	settingsGetCmd.Flags().StringVarP(&settingsDefault, "default", "d", "", "Value printed when the key is unset")
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}
