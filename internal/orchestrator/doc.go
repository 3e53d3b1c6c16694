// Package orchestrator schedules agent specs into phases and executes them.
//
// The package provides:
//   - PhaseScheduler: levels specs into dependency-respecting phases and
//     recovers from cycles, self-loops and dangling references without
//     losing any spec
//   - Engine: runs phases against a WorkerPool with bounded concurrency,
//     approval gates and critical-failure short-circuiting
//   - Coordinator: ties analysis, planning, execution and persistence
//     together for a single task
//
// Example usage:
//
//	plan, warnings := orchestrator.NewPhaseScheduler().Schedule(specs)
//	engine := orchestrator.NewEngine(models.AutonomyTrust, 5)
//	result, err := engine.Run(ctx, plan, orchestrator.NewWorkerPool(workers...))
package orchestrator
