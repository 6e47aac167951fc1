// Command goalctl is the operator tool for backups, streak inspection and
// one-off reminder sweeps.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"becomebetter/internal/config"
	"becomebetter/internal/database"
	"becomebetter/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one command line. The database is closed even when the
// command fails.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stdout)
	return root.Execute()
}

// app is the state shared by every subcommand, opened in PersistentPreRunE.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	db     *database.DB
	logger *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "goalctl",
		Short: "Become Better operator tool",
		Long: `Operator commands for the Become Better database.

Available subcommands:
  backup    - Export or import a JSON backup
  streak    - Print the streak summary of a goal
  reminders - Run one reminder sweep now`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file path (default: $CONFIG_FILE or config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newBackupCmd(a),
		newStreakCmd(a),
		newRemindersCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		return err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if _, err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a.cfg, a.db, a.logger = cfg, db, logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		a.db.Close()
	}
}
