package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newSubmitCmd() *cobra.Command {
	var (
		flagName       string
		flagPriority   string
		flagAsync      bool
		flagTimeout    string
		flagSubmitter  string
		flagDataset    string
		flagAlgorithm  string
		flagPreprocess bool
		flagParams     []string
		flagWait       bool
	)

	cmd := &cobra.Command{
		Use:   "submit <source>",
		Short: "Submit a data-processing task",
		Long:  "Submit a task running the given algorithm over the dataset at <source> (a local path, file:// or s3:// URI).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(flagParams))
			for _, p := range flagParams {
				key, value, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("invalid --param %q, want key=value", p)
				}
				params[key] = value
			}

			req := model.SubmitRequest{
				Submitter: flagSubmitter,
				Name:      flagName,
				Priority:  flagPriority,
				Async:     flagAsync,
				Timeout:   flagTimeout,
				Params:    params,
				Dataset: model.DatasetSpec{
					Type:       flagDataset,
					Source:     args[0],
					Preprocess: flagPreprocess,
				},
				Algorithm: model.AlgorithmSpec{Type: flagAlgorithm},
			}

			resp, err := client.Post("/api/v1/tasks/", req)
			if err != nil {
				return fmt.Errorf("submit task: %w", err)
			}

			var data model.SubmitResponse
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("Task submitted: %s\n", data.TaskID)

			if !flagWait {
				return nil
			}
			return waitAndPrintResult(data.TaskID)
		},
	}

	cmd.Flags().StringVar(&flagName, "name", "", "Task name")
	cmd.Flags().StringVar(&flagPriority, "priority", "", "Task priority (LOW, MEDIUM, HIGH, CRITICAL)")
	cmd.Flags().BoolVar(&flagAsync, "async", false, "Mark the task as asynchronous")
	cmd.Flags().StringVar(&flagTimeout, "timeout", "", "Task timeout as a duration, e.g. 5m")
	cmd.Flags().StringVar(&flagSubmitter, "submitter", "godp-cli", "Submitter identity")
	cmd.Flags().StringVarP(&flagDataset, "dataset", "d", "NUMERIC", "Dataset type")
	cmd.Flags().StringVarP(&flagAlgorithm, "algorithm", "a", "", "Algorithm type (required)")
	cmd.Flags().BoolVar(&flagPreprocess, "preprocess", false, "Preprocess the dataset before execution")
	cmd.Flags().StringArrayVarP(&flagParams, "param", "p", nil, "Algorithm parameter as key=value (repeatable)")
	cmd.Flags().BoolVarP(&flagWait, "wait", "w", false, "Wait for the task to finish and print its result")
	cmd.MarkFlagRequired("algorithm")

	return cmd
}

// waitAndPrintResult polls the task until it reaches a terminal status,
// then prints the result.
func waitAndPrintResult(id string) error {
	for {
		resp, err := client.Get("/api/v1/tasks/" + id + "/status")
		if err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		var status model.StatusResponse
		if err := json.Unmarshal(resp.Data, &status); err != nil {
			return fmt.Errorf("parse status: %w", err)
		}
		if status.Status.IsTerminal() {
			fmt.Printf("Task %s: %s\n", id, status.Status)
			return printResult(id)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
