package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health and engine load",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/health")
			if err != nil {
				return fmt.Errorf("get health: %w", err)
			}

			var data model.HealthResponse
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Server: %s (up %s)\n", data.Status, data.Uptime)
			fmt.Printf("  Workers:   %d\n", data.Engine.Workers)
			fmt.Printf("  Queued:    %d\n", data.Engine.Queued)
			fmt.Printf("  Running:   %d\n", data.Engine.Running)
			fmt.Printf("  Completed: %d\n", data.Engine.Completed)
			fmt.Printf("  Failed:    %d\n", data.Engine.Failed)
			fmt.Printf("  Cancelled: %d\n", data.Engine.Cancelled)
			return nil
		},
	}
}
