package cmd

import (
	"time"

	"dispatchq/internal/worker"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var (
		taskDuration time.Duration
		pollInterval time.Duration
	)

	var command = &cobra.Command{
		Use:   "worker",
		Short: "Start dispatcher worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Run(worker.Config{
				TaskDuration: taskDuration,
				PollInterval: pollInterval,
			})
		},
	}

	command.Flags().DurationVar(&taskDuration, "task-duration", 2*time.Second, "Simulated task execution duration")
	command.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "Fallback poll interval when no wake arrives")

	return command
}
