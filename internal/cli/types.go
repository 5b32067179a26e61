package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered dataset and algorithm types",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/types")
			if err != nil {
				return fmt.Errorf("list types: %w", err)
			}

			var data model.TypesResponse
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Println("Datasets:")
			for _, t := range data.Datasets {
				fmt.Printf("  - %s\n", t)
			}
			fmt.Println("Algorithms:")
			for _, t := range data.Algorithms {
				fmt.Printf("  - %s\n", t)
			}
			return nil
		},
	}
}
