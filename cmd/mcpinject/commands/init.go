package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/config"
	"github.com/shesha-tools/mcpinject/internal/errors"
)

var initPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := initPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return errors.NewUserError(err, "remove the existing file first, or pass --path")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "where to write the config file (default: XDG config dir)")

	rootCmd.AddCommand(initCmd)
}
