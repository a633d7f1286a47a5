package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/clients"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List known IDE/agent clients and their config locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runClientsWithIO(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
}

func runClientsWithIO(w io.Writer) error {
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	for _, name := range clients.Names() {
		path, err := clients.ConfigPath(name)
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "  %-10s %s\n", name, clients.DisplayName(name))
		if _, err := os.Stat(path); err == nil {
			green.Fprintf(w, "  %-10s %s (found)\n", "", path)
		} else {
			faint.Fprintf(w, "  %-10s %s (not found)\n", "", path)
		}
	}
	return nil
}
