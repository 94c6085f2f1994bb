package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/decompose"
	"github.com/ShayCichocki/agentnexus/internal/orchestrator"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// eventBuffer sizes the stage event channel streamed by --events.
const eventBuffer = 64

var (
	runConcurrent bool
	runAgents     []string
	runJSON       bool
	runMetrics    bool
	runEvents     bool
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a task through an agent pipeline",
	Long: `Run a task through a pipeline of agents.

The task is decomposed into agent roles unless --agents is given:
  - contains "build" or "create"  developer, validator, tester, auditor
  - contains "test"               tester, auditor
  - anything else                 developer, validator

Sequential mode (default) stops at the first failed stage.
--concurrent runs every stage on the worker pool and reports all of them.
--events streams stage transitions to stderr as JSON lines.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().BoolVar(&runConcurrent, "concurrent", false, "Run all stages concurrently")
	runCmd.Flags().StringSliceVar(&runAgents, "agents", nil, "Explicit agent sequence (comma separated)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the pipeline context as JSON")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "Print stage metrics after the run")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "Stream stage events to stderr as JSON lines")
}

func runTask(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	mode, err := orchestrator.ParseMode(a.cfg.Pipeline.Mode)
	if err != nil {
		return err
	}
	if runConcurrent {
		mode = orchestrator.ModeConcurrent
	}

	explicit := models.Sequence(runAgents)
	seq := explicit
	if len(seq) == 0 {
		seq = decompose.Decompose(task)
	}

	reg := prometheus.NewRegistry()
	metrics, err := orchestrator.NewMetrics(reg)
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{orchestrator.WithMetrics(metrics)}
	if !runJSON {
		opts = append(opts, orchestrator.WithObserver(stageObserver(cmd.ErrOrStderr())))
	}
	if runEvents {
		opts = append(opts, orchestrator.WithEventBuffer(eventBuffer))
	}
	orch, err := a.orchestrator(seq, opts...)
	if err != nil {
		return err
	}
	defer orch.Close()

	streamed := make(chan struct{})
	if ch := orch.Events(); ch != nil {
		go func() {
			defer close(streamed)
			streamEvents(cmd.ErrOrStderr(), ch)
		}()
	} else {
		close(streamed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting run", zap.String("task", task), zap.String("mode", string(mode)), zap.Strings("sequence", seq))
	if !runJSON {
		printHeader(cmd.OutOrStdout(), task, mode, seq)
	}

	seq, pc := dispatch(ctx, orch, mode, explicit, task)

	// Close drains runs in flight and closes the event channel.
	orch.Close()
	<-streamed

	if runJSON {
		if err := printJSON(cmd.OutOrStdout(), pc); err != nil {
			return err
		}
	} else {
		renderContext(cmd.OutOrStdout(), pc, seq)
	}
	if runMetrics {
		if err := renderMetrics(cmd.OutOrStdout(), reg); err != nil {
			return err
		}
	}

	if failed := pc.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d stage(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// dispatch runs an explicit sequence as given, or lets the orchestrator
// decompose task when explicit is empty.
func dispatch(ctx context.Context, orch *orchestrator.Orchestrator, mode orchestrator.Mode, explicit models.Sequence, task string) (models.Sequence, *models.PipelineContext) {
	if len(explicit) == 0 {
		return orch.Run(ctx, mode, task)
	}
	if mode == orchestrator.ModeConcurrent {
		return explicit, orch.RunPipelineConcurrent(ctx, explicit, task)
	}
	return explicit, orch.RunPipeline(ctx, explicit, task)
}
