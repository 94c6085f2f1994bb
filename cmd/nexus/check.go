package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentnexus/internal/config"
	"github.com/ShayCichocki/agentnexus/internal/exec"
)

const toolTimeout = 10 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the interpreter, linter, formatters and model key",
	Long: `Verify that the external programs nexus shells out to are installed.

The interpreter and linter are required. Formatters and the model API key
only produce warnings since the pipeline degrades without them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if failed := runChecks(cmd.Context(), cmd.OutOrStdout(), a.cfg, a.runner); failed > 0 {
			return fmt.Errorf("%d required check(s) failed", failed)
		}
		return nil
	},
}

// runChecks prints one status line per prerequisite and returns the number
// of required checks that failed.
func runChecks(ctx context.Context, w io.Writer, cfg *config.Config, runner exec.CommandRunner) int {
	failed := 0

	if version, err := toolVersion(ctx, runner, cfg.Execution.Interpreter, "--version"); err != nil {
		printStatus(w, "✗", fmt.Sprintf("Interpreter %q not usable: %v", cfg.Execution.Interpreter, err), failColor)
		failed++
	} else {
		printStatus(w, "✓", "Interpreter: "+version, okColor)
	}

	if len(cfg.Validation.Linter) == 0 {
		printStatus(w, "✗", "No linter configured (validation.linter)", failColor)
		failed++
	} else if _, err := toolVersion(ctx, runner, cfg.Validation.Linter[0], "--version"); err != nil {
		printStatus(w, "✗", fmt.Sprintf("Linter %q not found", cfg.Validation.Linter[0]), failColor)
		failed++
	} else {
		printStatus(w, "✓", "Linter "+cfg.Validation.Linter[0]+" found", okColor)
	}

	for _, f := range cfg.Validation.Formatters {
		if len(f) == 0 {
			continue
		}
		if _, err := toolVersion(ctx, runner, f[0], "--version"); err != nil {
			printStatus(w, "⚠", fmt.Sprintf("Formatter %q not found (code is left unformatted)", f[0]), warnColor)
			continue
		}
		printStatus(w, "✓", "Formatter "+f[0]+" found", okColor)
	}

	key, err := config.GetAPIKey(cfg)
	switch {
	case cfg.Model.Provider == config.ProviderBedrock:
		printStatus(w, "✓", "Bedrock uses AWS credentials", okColor)
	case errors.Is(err, config.ErrNoAPIKey):
		printStatus(w, "⚠", "Model API key not set (developer and custom agents will fail)", warnColor)
	default:
		printStatus(w, "✓", fmt.Sprintf("Model API key %s (%s)", config.MaskAPIKey(key), config.GetAPIKeySource(cfg)), okColor)
	}

	return failed
}

// toolVersion runs name with args and returns the first line of its output.
func toolVersion(ctx context.Context, runner exec.CommandRunner, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	out, err := runner.Run(ctx, "", name, args...)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}
