package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a Python file for syntax errors and style violations",
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

		v, _ := a.validator()
		report := v.Validate(cmd.Context(), string(source))
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.IsValid {
			return fmt.Errorf("%s is not valid", args[0])
		}
		return nil
	},
}
