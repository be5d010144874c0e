package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pdf-role-chat/internal/config"
)

var errBackupUnsupported = errors.New("backups are only available for the chromem backend")

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Back up or restore the vector index",
}

var indexExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write an encrypted backup of the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := chromemApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.vectors.Export(args[0], a.cfg.VectorStore.EncryptionKey); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d chunks to %s\n", a.vectors.Count(), args[0])
		return nil
	},
}

var indexImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the index from an encrypted backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := chromemApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.vectors.Import(args[0], a.cfg.VectorStore.EncryptionKey); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d chunks from %s\n", a.vectors.Count(), args[0])
		return nil
	},
}

func chromemApp(cmd *cobra.Command) (*app, error) {
	cfg := getConfig()
	if cfg.VectorStore.Backend != config.BackendChromem {
		return nil, errBackupUnsupported
	}
	return newApp(cmd.Context(), cfg)
}

func init() {
	indexCmd.AddCommand(indexExportCmd, indexImportCmd)
	rootCmd.AddCommand(indexCmd)
}
