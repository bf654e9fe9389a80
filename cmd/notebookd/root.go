package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coherentnotebook/entropy/internal/logging"
	"github.com/coherentnotebook/entropy/pkg/config"
)

// Version is set during build.
var Version = "0.1.0"

// rootCmd is the notebookd operations CLI: daemon lifecycle, catalog
// rebuilds, and system diagnostics for the notebook-entropy store, plus
// the create-notebook and submit commands, which register a notebook and
// write single entries for manual testing and scripting. It has no
// commands for reading entries back.
var rootCmd = &cobra.Command{
	Use:   "notebookd",
	Short: "Operations CLI for the notebook-entropy store",
	Long: `notebookd runs and inspects the notebook-entropy background
services: the propagation worker that applies cumulative_cost deltas,
and the catalog cache that serves pre-generated cluster summaries.

Examples:
  notebookd start             # Start the propagation worker daemon
  notebookd status            # Check daemon status
  notebookd stop               # Stop the daemon
  notebookd rebuild <notebook-id>   # Rebuild a notebook's coherence snapshot from storage
  notebookd doctor             # Run a system check`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log_level")
		format := "console"
		if cfg, err := config.Load(); err == nil {
			format = cfg.Logging.Format
		}
		logging.Init(logging.Config{Level: level, Format: format, Output: "stderr"})
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (not read; config.yaml is looked up in ., ~/.notebook-entropy and /etc/notebook-entropy)")
	rootCmd.PersistentFlags().String("log_level", "info", "log level (debug, info, warn, error)")
}
