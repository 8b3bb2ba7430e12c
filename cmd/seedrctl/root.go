package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

var (
	flagConfigFile string
	flagLogFile    string
	flagVerbosity  int
	flagDryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "seedrctl",
	Short: "Drive the Seedr cloud download-client adapter from the command line",
	Long: `seedrctl exercises the Seedr adapter (submit, poll, remove, import, self-test)
without requiring the surrounding movie-collection manager.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(flagLogFile, flagVerbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "path to log file (stdout only if empty)")
	rootCmd.PersistentFlags().CountVarP(&flagVerbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "log what submit, remove and mark-imported would do instead of doing it")
}

// Execute runs the root command, exiting non-zero on failure, matching the
// teacher's cmd.Execute entrypoint.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
