package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/logging"
)

var (
	removeClient string
	removeConfig string
	removeForce  bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an MCP server registration",
	Long: `Remove deletes the named MCP server entry from the target config file.

Removing a name that is not registered is a successful no-op and leaves
the file byte-for-byte untouched. A confirmation prompt precedes the
removal unless --force is given or stdin is not interactive.`,
	Example: `  mcpinject remove github --client claude
  mcpinject remove github --config ~/.cursor/mcp.json --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemoveWithIO(cmd, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeClient, "client", "", "known client to target (see 'mcpinject clients')")
	removeCmd.Flags().StringVar(&removeConfig, "config", "", "explicit config file to target")
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "skip the confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}

func runRemoveWithIO(cmd *cobra.Command, name string, r io.Reader, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	path, err := resolveTargetPath(removeClient, removeConfig)
	if err != nil {
		return err
	}

	if !removeForce && logging.IsTTYReader(r) {
		fmt.Fprintf(w, "Remove %q from %s? [y/N]: ", name, path)
		answer, _ := bufio.NewReader(r).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(w, "Cancelled")
			return nil
		}
	}

	inj, err := newInjector(path, logger)
	if err != nil {
		return err
	}

	outcome, err := inj.Remove(cmd.Context(), name)
	if err != nil {
		return err
	}

	reportOutcome(w, outcome, name)
	syncRegistry(logger, path)
	return nil
}
