package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"becomebetter/internal/repository"
	"becomebetter/internal/service"
)

func newRemindersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder maintenance",
	}

	var at string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reminder sweep",
		Long: `Run one reminder sweep, exactly as the scheduler does every minute.

Users whose local reminder time matches the sweep minute and who have goals
without an update today are emailed. --at replays a specific minute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			email, err := service.NewEmailService(cmd.Context(), a.logger, a.cfg.AWSRegion, a.cfg.SESFromEmail, a.cfg.SESFromName, a.cfg.AppBaseURL, a.cfg.EmailDebug)
			if err != nil {
				return err
			}
			reminders := service.NewReminderService(
				repository.NewSettingsRepository(a.db),
				repository.NewGoalRepository(a.db),
				repository.NewUpdateRepository(a.db),
				email,
				nil,
				a.logger,
			)

			result, err := reminders.Run(cmd.Context(), now)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		},
	}
	runCmd.Flags().StringVar(&at, "at", "", "Sweep time as RFC 3339 (default: now)")

	cmd.AddCommand(runCmd)
	return cmd
}
