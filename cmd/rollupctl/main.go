// Command rollupctl is a small driver around the block-state manager
// and execution session: a demo mode that runs a scripted scenario
// against an in-memory store, and a serve mode that opens a
// configured persistent backend and runs a scripted operation file
// against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/rlog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rollupctl",
	Short: "rollupctl drives the fork-aware state cache for manual inspection",
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")

	rlog.Init(rlog.Config{
		Level:      rlog.Level(level),
		JSONOutput: jsonOut,
	})
}
