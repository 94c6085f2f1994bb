package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentnexus/internal/engine"
)

var execTimeout time.Duration

var execCmd = &cobra.Command{
	Use:   "exec <file>",
	Short: "Run a Python file in a child process and report the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		e := a.engine()
		if execTimeout > 0 {
			cfg := a.cfg.Execution
			cfg.Timeout = execTimeout
			e = engine.NewFromConfig(cfg, a.logger)
		}

		report := e.Execute(cmd.Context(), string(source))
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("execution failed")
		}
		return nil
	},
}

func init() {
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Override execution.timeout")
}
