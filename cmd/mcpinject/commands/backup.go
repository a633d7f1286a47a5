package commands

import (
	"fmt"
	"io"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/shesha-tools/mcpinject/internal/backup"
	"github.com/shesha-tools/mcpinject/internal/config"
	"github.com/shesha-tools/mcpinject/internal/errors"
)

var (
	backupClient string
	backupConfig string
	pruneKeep    int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage sidecar backups of a config file",
	Long: `Backup inspects and manipulates the sidecar backups that every
mutation writes next to the target file before committing.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups of the target config file, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackupListWithIO(cmd.OutOrStdout())
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackupPruneWithIO(cmd.OutOrStdout())
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the target config file from its most recent backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackupRestoreWithIO(cmd.OutOrStdout())
	},
}

func init() {
	backupCmd.PersistentFlags().StringVar(&backupClient, "client", "", "known client to target (see 'mcpinject clients')")
	backupCmd.PersistentFlags().StringVar(&backupConfig, "config", "", "explicit config file to target")
	backupPruneCmd.Flags().IntVar(&pruneKeep, "keep", config.DefaultRetention, "number of backups to keep")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPruneCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupListWithIO(w io.Writer) error {
	path, err := resolveTargetPath(backupClient, backupConfig)
	if err != nil {
		return err
	}

	backups, err := backupManager().List(path)
	if err != nil {
		if cerrors.Is(err, backup.ErrNoBackupsFound) {
			fmt.Fprintf(w, "No backups found for %s\n", path)
			return nil
		}
		return err
	}

	fmt.Fprintf(w, "Backups of %s:\n", path)
	for _, b := range backups {
		fmt.Fprintf(w, "  %s  %s\n", b.CreatedAt.Format(time.DateTime), b.Path)
	}
	return nil
}

func runBackupPruneWithIO(w io.Writer) error {
	path, err := resolveTargetPath(backupClient, backupConfig)
	if err != nil {
		return err
	}

	if pruneKeep < 0 {
		return errors.NewUserError(
			cerrors.Newf("invalid --keep value %d", pruneKeep),
			"--keep must be zero or positive")
	}

	if err := backupManager().Prune(path, pruneKeep); err != nil {
		return err
	}
	fmt.Fprintf(w, "Pruned backups of %s, kept at most %d\n", path, pruneKeep)
	return nil
}

func runBackupRestoreWithIO(w io.Writer) error {
	path, err := resolveTargetPath(backupClient, backupConfig)
	if err != nil {
		return err
	}

	mgr := backupManager()
	latest, err := mgr.Latest(path)
	if err != nil {
		if cerrors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err,
				"no backup exists yet; backups are created by add/remove operations")
		}
		return err
	}

	if err := mgr.Restore(path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Restored %s from %s\n", path, latest.Path)
	return nil
}
