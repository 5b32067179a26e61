package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newHistoryCmd() *cobra.Command {
	var (
		flagLimit  int
		flagOffset int
		flagStatus string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/tasks/?limit=%d&offset=%d", flagLimit, flagOffset)
			if flagStatus != "" {
				path += "&status=" + flagStatus
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			var data model.TaskListResponse
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(data.Tasks) == 0 {
				fmt.Println("No archived tasks found.")
				return nil
			}

			fmt.Printf("%-28s  %-10s  %-24s  %-9s  %s\n", "ID", "STATUS", "NAME", "PRIORITY", "CREATED")
			fmt.Printf("%-28s  %-10s  %-24s  %-9s  %s\n", "----", "------", "----", "--------", "-------")
			for _, task := range data.Tasks {
				fmt.Printf("%-28s  %-10s  %-24s  %-9s  %s\n",
					task.ID, task.Status, task.Config.Name, task.Config.Priority,
					humanize.Time(task.CreatedAt))
			}
			if data.Total > len(data.Tasks) {
				fmt.Printf("\n(%d of %s shown)\n", len(data.Tasks), humanize.Comma(int64(data.Total)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum tasks to list")
	cmd.Flags().IntVar(&flagOffset, "offset", 0, "Listing offset")
	cmd.Flags().StringVar(&flagStatus, "status", "", "Filter by task status (COMPLETED, FAILED, CANCELLED)")
	return cmd
}
