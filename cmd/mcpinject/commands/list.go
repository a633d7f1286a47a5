package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/document"
)

var (
	listClient string
	listConfig string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List MCP server registrations in a config file",
	Example: `  mcpinject list --client claude
  mcpinject list --config ~/.cursor/mcp.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListWithIO(cmd, cmd.OutOrStdout())
	},
}

func init() {
	listCmd.Flags().StringVar(&listClient, "client", "", "known client to target (see 'mcpinject clients')")
	listCmd.Flags().StringVar(&listConfig, "config", "", "explicit config file to target")

	rootCmd.AddCommand(listCmd)
}

func runListWithIO(cmd *cobra.Command, w io.Writer) error {
	path, err := resolveTargetPath(listClient, listConfig)
	if err != nil {
		return err
	}

	doc, err := document.Load(path)
	if err != nil {
		return err
	}

	if doc.Len() == 0 {
		fmt.Fprintf(w, "No MCP servers registered in %s\n", path)
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintf(w, "MCP servers in %s:\n\n", path)
	for _, entry := range doc.Entries() {
		bold.Fprintf(w, "  %s", entry.Name)
		if entry.Managed() {
			faint.Fprint(w, "  (managed)")
		}
		fmt.Fprintln(w)

		cmdline := entry.Command
		if len(entry.Args) > 0 {
			cmdline += " " + strings.Join(entry.Args, " ")
		}
		fmt.Fprintf(w, "    command: %s\n", cmdline)

		if len(entry.Env) > 0 {
			keys := make([]string, 0, len(entry.Env))
			for k := range entry.Env {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(w, "    env:     %s\n", strings.Join(keys, ", "))
		}
	}
	return nil
}
