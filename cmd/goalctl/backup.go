package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"becomebetter/internal/service"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import a JSON backup",
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Generate default filename if not provided
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			backup, err := service.NewBackupService(a.db, a.logger).Export(output)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users, %d goals and %d updates to %s (%.2f MB)\n",
				len(backup.Users), len(backup.Goals), len(backup.Updates), output, float64(info.Size())/1024/1024)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	var (
		input string
		clearExisting bool
		yes   bool
	)
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup",
		Long: `Import a JSON backup in a single transaction.

Without --clear the rows are added to the existing data and any id conflict
aborts the import. With --clear every table is emptied first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file: %w", err)
			}

			if clearExisting && !yes {
				fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
			}

			a.logger.Info("importing backup", zap.String("path", input), zap.Bool("clear", clearExisting))
			if err := service.NewBackupService(a.db, a.logger).Import(input, clearExisting); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Import complete")
			return nil
		},
	}
	importCmd.Flags().StringVarP(&input, "input", "i", "", "Input file path")
	importCmd.Flags().BoolVar(&clearExisting, "clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the --clear confirmation prompt")
	_ = importCmd.MarkFlagRequired("input")

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
