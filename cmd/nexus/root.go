package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Agent pipeline orchestrator with sandboxed code execution",
	Long: `nexus routes natural-language tasks through a pipeline of agents.

A task is decomposed into an ordered list of agent roles (developer,
validator, tester, auditor). The developer agent asks a language model
for code, checks it with a syntax parser and a style linter, and runs
it in a child process with a timeout when it validates cleanly.

Pipelines run sequentially, stopping at the first failed stage, or
concurrently on a bounded worker pool with --concurrent.

Configuration is read from ~/.config/nexus/config.yaml, a project
.nexus.yaml and NEXUS_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: XDG and project config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}
