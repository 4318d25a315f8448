package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/backup"
)

const passphraseEnv = "GROCERYLIST_BACKUP_PASSPHRASE"

func (o *RootOptions) passphrase(flag string) string {
	if flag != "" {
		return flag
	}
	return o.getenv(passphraseEnv)
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "backup <file>",
		Short: "Write a snapshot of the database",
		Long: `Write a consistent snapshot of the database to a new file.

With a passphrase (--passphrase or GROCERYLIST_BACKUP_PASSPHRASE) the
snapshot is encrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			pass := rootOpts.passphrase(passphrase)
			if err := backup.Snapshot(cmd.Context(), s.db, args[0], pass); err != nil {
				return fail(s.out, err)
			}
			s.logger.Info("snapshot written", "path", args[0], "encrypted", pass != "")
			return s.out.Success(map[string]any{"path": args[0], "encrypted": pass != ""},
				fmt.Sprintf("Wrote snapshot to %s", args[0]))
		},
	}

	cmd.Flags().StringVar(&passphrase, "passphrase", "", "encrypt the snapshot with this passphrase")

	return cmd
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a snapshot",
		Long: `Replace the database with a snapshot written by backup.

The snapshot is checked before the database is touched. Stop any running
server first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return fail(out, err)
			}

			if err := backup.Restore(cmd.Context(), args[0], cfg.DBPath, rootOpts.passphrase(passphrase)); err != nil {
				return fail(out, err)
			}
			return out.Success(map[string]string{"path": cfg.DBPath},
				fmt.Sprintf("Restored %s from %s", cfg.DBPath, args[0]))
		},
	}

	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase the snapshot was encrypted with")

	return cmd
}
