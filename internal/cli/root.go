// Package cli implements the godp command line client.
package cli

import (
	"log/slog"
	"os"

	"github.com/me/godp/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking GODP_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("GODP_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the godp CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "godp",
		Short: "GoDP — priority task engine for pluggable data processing",
		Long:  "GoDP submits, monitors, and manages data-processing tasks running on a GoDP server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "GoDP server URL (or GODP_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newSubmitCmd(),
		newStatusCmd(),
		newResultCmd(),
		newCancelCmd(),
		newHistoryCmd(),
		newTypesCmd(),
		newPluginsCmd(),
		newHealthCmd(),
	)

	return root
}
