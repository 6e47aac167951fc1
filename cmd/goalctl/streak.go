package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"becomebetter/internal/repository"
	"becomebetter/internal/service"
)

func newStreakCmd(a *app) *cobra.Command {
	var goalID int64

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Print the streak summary of a goal as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			goals := service.NewGoalService(
				repository.NewGoalRepository(a.db),
				repository.NewUpdateRepository(a.db),
				repository.NewSettingsRepository(a.db),
				nil,
				a.logger,
			)

			summary, err := goals.StreakForGoal(goalID)
			if err != nil {
				return fmt.Errorf("goal %d: %w", goalID, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().Int64Var(&goalID, "goal", 0, "Goal id")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}
