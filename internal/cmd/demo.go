package cmd

import (
	"github.com/spf13/cobra"

	"github.com/beiklive/mytoolmodule/internal/logging"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Emit one record per level, raise to DEBUG, then stop",
	Long: `Emit a record at every level with the configured threshold, raise the
threshold to DEBUG, then stop the logger. The record logged after the stop
is never written.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	log := logging.Default()

	log.Info("hello world")
	log.Error("this is error")
	log.Warning("this is warning")
	log.Debug("this is debug 1")
	log.Error("Error: {} - {}", 42, 3.14)

	log.SetLevel(logging.LevelDebug)
	log.Debug("this is debug 2")
	log.Debug("Debug: Value is {}", 42)

	log.Stop()
	log.Info("this log will not output")
	return nil
}
