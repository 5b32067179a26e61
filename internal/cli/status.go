package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task_id>",
		Short: "Check the status of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			resp, err := client.Get("/api/v1/tasks/" + id)
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}

			var task model.Task
			if err := json.Unmarshal(resp.Data, &task); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Task: %s\n", task.ID)
			if task.Config.Name != "" {
				fmt.Printf("  Name:      %s\n", task.Config.Name)
			}
			fmt.Printf("  Status:    %s\n", task.Status)
			fmt.Printf("  Priority:  %s\n", task.Config.Priority)
			if task.SubmitterID != "" {
				fmt.Printf("  Submitter: %s\n", task.SubmitterID)
			}
			fmt.Printf("  Created:   %s\n", humanize.Time(task.CreatedAt))
			if task.StartedAt != nil {
				fmt.Printf("  Started:   %s\n", humanize.Time(*task.StartedAt))
			}
			if task.EndedAt != nil {
				fmt.Printf("  Ended:     %s\n", humanize.Time(*task.EndedAt))
				if task.StartedAt != nil {
					fmt.Printf("  Duration:  %s\n", task.EndedAt.Sub(*task.StartedAt))
				}
			}
			if task.ErrorMessage != "" {
				fmt.Printf("  Error:     %s\n", task.ErrorMessage)
			}
			return nil
		},
	}
}
