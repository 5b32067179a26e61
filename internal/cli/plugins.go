package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/godp/pkg/model"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage script plugins on the server",
	}
	cmd.AddCommand(newPluginsListCmd(), newPluginsLoadCmd(), newPluginsUnloadCmd())
	return cmd
}

func newPluginsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/plugins/")
			if err != nil {
				return fmt.Errorf("list plugins: %w", err)
			}

			var plugins []model.PluginInfo
			if err := json.Unmarshal(resp.Data, &plugins); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(plugins) == 0 {
				fmt.Println("No plugins loaded.")
				return nil
			}
			fmt.Printf("%-24s  %-10s  %-16s  %s\n", "NAME", "VERSION", "KINDS", "PATH")
			for _, p := range plugins {
				fmt.Printf("%-24s  %-10s  %-16s  %s\n",
					p.Name, p.Version, strings.Join(p.Kinds, ","), p.Path)
			}
			return nil
		},
	}
}

func newPluginsLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <path>",
		Short: "Load a plugin script on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/plugins/", map[string]string{"path": args[0]})
			if err != nil {
				return fmt.Errorf("load plugin: %w", err)
			}

			var info model.PluginInfo
			if err := json.Unmarshal(resp.Data, &info); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("Plugin loaded: %s %s\n", info.Name, info.Version)
			return nil
		},
	}
}

func newPluginsUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload <name>",
		Short: "Unload a plugin from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/plugins/" + args[0]); err != nil {
				return fmt.Errorf("unload plugin: %w", err)
			}
			fmt.Printf("Plugin unloaded: %s\n", args[0])
			return nil
		},
	}
}
