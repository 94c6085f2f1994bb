// Package orchestrator routes tasks to named agents and runs agent sequences
// as pipelines.
//
// The Registry binds names to agent instances. The Orchestrator resolves
// names through it and runs a sequence either sequentially, stopping at the
// first failed stage, or concurrently on a bounded pool of workers, in which
// case every stage runs and the results are reassembled in sequence order.
//
// No error crosses the Orchestrator boundary: an unknown agent name, an agent
// failure or a malformed agent output all become error-status results in the
// returned PipelineContext.
//
// Example usage:
//
//	reg := orchestrator.NewRegistry()
//	reg.SpawnCatalog(catalog, "developer", "validator")
//	orch := orchestrator.New(orchestrator.WithRegistry(reg))
//	defer orch.Close()
//	pc := orch.RunPipeline(ctx, models.Sequence{"developer", "validator"}, "Build a CLI")
package orchestrator
