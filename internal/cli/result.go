package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <task_id>",
		Short: "Fetch the result of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(args[0])
		},
	}
}

func printResult(id string) error {
	resp, err := client.Get("/api/v1/tasks/" + id + "/result")
	if err != nil {
		return fmt.Errorf("get result: %w", err)
	}

	var res model.Result
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Printf("Result: %s\n", res.Status)
	if res.Message != "" {
		fmt.Printf("  Message: %s\n", res.Message)
	}
	if res.Data != "" {
		fmt.Println(res.Data)
	}
	return nil
}
