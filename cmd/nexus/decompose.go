package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentnexus/internal/decompose"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <task>",
	Short: "Show the agent sequence for a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task := strings.Join(args, " ")
		m := decompose.Classify(task)

		out := cmd.OutOrStdout()
		rule := m.Rule
		if m.Keyword != "" {
			rule = fmt.Sprintf("%s (matched %q)", m.Rule, m.Keyword)
		}
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Rule:"), rule)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Sequence:"), strings.Join(m.Sequence, " → "))
		return nil
	},
}
