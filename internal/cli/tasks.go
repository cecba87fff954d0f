package cli

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hangman-service/internal/app"
)

// NewTasksCmd runs background tasks once, for use from an external cron.
func NewTasksCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Run a background task once",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cache-average",
		Short: "Recompute the average attempts remaining across active games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), *configPath, app.TaskCacheAverageAttempts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "send-reminders",
		Short: "Email the owners of active games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), *configPath, app.TaskSendReminders)
		},
	})
	return cmd
}

func runTask(ctx context.Context, configPath, task string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.service.RunTask(ctx, task); err != nil {
		return err
	}
	log.WithField("task", task).Info("task finished")
	return nil
}
