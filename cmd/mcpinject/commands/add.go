package commands

import (
	"fmt"
	"io"

	cerrors "github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/document"
	"github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/internal/injector"
	"github.com/shesha-tools/mcpinject/internal/logging"
)

var (
	addClient  string
	addConfig  string
	addEnv     []string
	addForce   bool
	addManaged bool
)

var addCmd = &cobra.Command{
	Use:   "add [name] [command] [args...]",
	Short: "Add or update an MCP server registration",
	Long: `Add registers an MCP server entry under the mcpServers key of the
target config file, creating the file if it does not exist yet.

Re-adding an existing name with the same command is a no-op; a different
command overwrites the entry. Overwriting an entry that was not created by
this tool prints a warning unless --force is given.

With no positional arguments, add starts an interactive picker over the
built-in server presets.`,
	Example: `  mcpinject add github npx --client claude -- -y @modelcontextprotocol/server-github
  mcpinject add filesystem npx --config ~/.cursor/mcp.json -- -y @modelcontextprotocol/server-filesystem /tmp
  mcpinject add db ./scripts/db-mcp --client cursor --env DB_URL=postgres://localhost/dev
  mcpinject add --client claude   # interactive preset picker`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddWithIO(cmd, args, cmd.OutOrStdout())
	},
}

func init() {
	addCmd.Flags().StringVar(&addClient, "client", "", "known client to target (see 'mcpinject clients')")
	addCmd.Flags().StringVar(&addConfig, "config", "", "explicit config file to target")
	addCmd.Flags().StringArrayVar(&addEnv, "env", nil, "environment variable for the server (KEY=VALUE, repeatable)")
	addCmd.Flags().BoolVar(&addForce, "force", false, "overwrite entries not created by this tool without warning")
	addCmd.Flags().BoolVar(&addManaged, "managed", true, "stamp the entry with the provenance marker")

	rootCmd.AddCommand(addCmd)
}

func runAddWithIO(cmd *cobra.Command, args []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	path, err := resolveTargetPath(addClient, addConfig)
	if err != nil {
		return err
	}

	spec := injector.EntrySpec{Managed: addManaged}
	switch {
	case len(args) == 0:
		picked, err := pickPreset(cmd.InOrStdin())
		if err != nil {
			return err
		}
		spec.Name = picked.Name
		spec.Command = picked.Command
		spec.Args = picked.Args
	case len(args) == 1:
		return errors.NewUserError(
			cerrors.New("missing command"),
			"usage: mcpinject add <name> <command> [args...]")
	default:
		spec.Name = args[0]
		spec.Command = args[1]
		spec.Args = args[2:]
	}

	env, err := parseKeyValueSlice(addEnv, "env")
	if err != nil {
		return err
	}
	spec.Env = env

	warnUnmanagedOverwrite(cmd, path, spec.Name)

	inj, err := newInjector(path, logger)
	if err != nil {
		return err
	}

	outcome, err := inj.Add(cmd.Context(), spec)
	if err != nil {
		return err
	}

	reportOutcome(w, outcome, spec.Name)
	hardenExecutable(logger, spec.Command)
	syncRegistry(logger, path)
	return nil
}

// warnUnmanagedOverwrite prints a warning when the add is about to replace
// an entry this tool did not create. Advisory only: the file can change
// between this check and the write, and the operation proceeds either way.
func warnUnmanagedOverwrite(cmd *cobra.Command, path, name string) {
	if addForce {
		return
	}
	doc, err := document.Load(path)
	if err != nil {
		return
	}
	existing := doc.GetEntry(name)
	if existing == nil || existing.Managed() {
		return
	}
	color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(),
		"Warning: %q was not created by mcpinject and will be overwritten (use --force to silence)\n", name)
}

func reportOutcome(w io.Writer, outcome *injector.Outcome, name string) {
	green := color.New(color.FgGreen)
	switch outcome.Action {
	case injector.ActionAdded:
		green.Fprintf(w, "Added %q to %s\n", name, outcome.Path)
	case injector.ActionOverwritten:
		green.Fprintf(w, "Updated %q in %s\n", name, outcome.Path)
	case injector.ActionRemoved:
		green.Fprintf(w, "Removed %q from %s\n", name, outcome.Path)
	case injector.ActionAbsent:
		fmt.Fprintf(w, "%q is not registered in %s (no changes made)\n", name, outcome.Path)
	}
	if outcome.BackupPath != "" {
		fmt.Fprintf(w, "Backup: %s\n", outcome.BackupPath)
	}
	if outcome.Attempts > 1 {
		fmt.Fprintf(w, "Succeeded after %d attempts\n", outcome.Attempts)
	}
}
