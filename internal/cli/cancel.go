package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task_id>",
		Short: "Cancel a queued or running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			resp, err := client.Delete("/api/v1/tasks/" + id)
			if err != nil {
				return fmt.Errorf("cancel task: %w", err)
			}

			var data model.CancelResponse
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if data.Cancelled {
				fmt.Printf("Task %s cancelled\n", id)
			} else {
				fmt.Printf("Task %s was not cancelled (already terminal)\n", id)
			}
			return nil
		},
	}
}
