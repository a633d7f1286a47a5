package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/clients"
	"github.com/shesha-tools/mcpinject/internal/document"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/internal/injector"
	"github.com/shesha-tools/mcpinject/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check detected client configs and clean up leftovers",
	Long: `Doctor parses every detected client config file, reports files that
are corrupt or have an unexpected shape, and removes stale temp files
left behind by interrupted operations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctorWithIO(cmd, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorWithIO(cmd *cobra.Command, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	detected := clients.Detect()
	if len(detected) == 0 {
		fmt.Fprintln(w, "No client config files detected")
		return nil
	}

	problems := 0
	for _, name := range detected {
		path, err := clients.ConfigPath(name)
		if err != nil {
			continue
		}

		doc, err := document.Load(path)
		switch {
		case err == nil:
			green.Fprintf(w, "  ok       %s (%d servers)\n", path, doc.Len())
		case mcperrors.KindOf(err) == mcperrors.KindCorruptInput:
			red.Fprintf(w, "  corrupt  %s: %v\n", path, err)
			problems++
		case mcperrors.KindOf(err) == mcperrors.KindSchemaMismatch:
			red.Fprintf(w, "  shape    %s: %v\n", path, err)
			problems++
		default:
			red.Fprintf(w, "  error    %s: %v\n", path, err)
			problems++
		}

		swept, err := injector.SweepFor(path)
		if err != nil {
			logger.Warn("temp sweep failed", "path", path, "error", err)
			continue
		}
		for _, leftover := range swept {
			fmt.Fprintf(w, "  swept    %s\n", leftover)
		}
	}

	if problems > 0 {
		fmt.Fprintf(w, "\n%d config file(s) need attention; 'mcpinject backup restore' can recover a backed-up file\n", problems)
	}
	return nil
}
